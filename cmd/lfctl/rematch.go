package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lost-found/backend/internal/service"
)

var rematchCmd = &cobra.Command{
	Use:   "rematch [post-id...]",
	Short: "对指定帖子重新执行匹配流程",
	Long: `rematch 对给定帖子依次执行 抽取 → 检索 → 重排 → 落库 → 通知。
使用 --all-open 时处理全部未完成的帖子；已有匹配按 (寻物帖, 招领帖) 更新，不会重复。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		allOpen, _ := cmd.Flags().GetBool("all-open")
		if len(args) == 0 && !allOpen {
			return errors.New("请指定帖子 ID 或使用 --all-open")
		}

		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		ids := args
		if allOpen {
			posts, err := a.repo.Post.ListOpen(ctx)
			if err != nil {
				return err
			}
			ids = ids[:0:0]
			for _, p := range posts {
				ids = append(ids, p.PostID)
			}
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, id := range ids {
			run, err := a.svc.Matching.Rematch(ctx, id)
			switch {
			case errors.Is(err, service.ErrMatchingInProgress):
				fmt.Fprintln(out, warnMark("…"), id, "正在匹配中，跳过")
				continue
			case err != nil:
				failed++
				fmt.Fprintln(out, errMark("✗"), id, err)
				continue
			}
			fmt.Fprintf(out, "%s %s %s=%d %s=%d %s=%d/%d %s=%d\n",
				okMark("✓"), id,
				label("pool"), run.PoolSize,
				label("matches"), len(run.Matches),
				label("llm/fallback"), run.LLMJudged, run.FallbackJudged,
				label("notified"), run.NotificationsSent,
			)
		}

		if failed > 0 {
			return fmt.Errorf("%d 个帖子匹配失败", failed)
		}
		return nil
	},
}

func init() {
	rematchCmd.Flags().Bool("all-open", false, "处理全部未完成的帖子")
	rootCmd.AddCommand(rematchCmd)
}
