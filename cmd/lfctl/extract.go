package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <post-id>",
	Short: "只执行信息抽取并写入缓存",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		cache, err := a.svc.Matching.Extract(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, okMark("✓"), args[0], label("source")+"="+cache.Source)
		for _, f := range []struct{ k, v string }{
			{"item_name", cache.ItemName},
			{"color", cache.Color},
			{"brand", cache.Brand},
			{"features", cache.Features},
			{"location_detail", cache.LocationDetail},
			{"time_info", cache.TimeInfo},
		} {
			fmt.Fprintf(out, "  %-16s %s\n", label(f.k), f.v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
