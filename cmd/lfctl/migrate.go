package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lost-found/backend/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "执行内嵌的数据库迁移",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		sqlDB, err := a.db.DB()
		if err != nil {
			return err
		}
		if err := database.RunMigrations(sqlDB, a.logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okMark("✓"), "迁移完成")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
