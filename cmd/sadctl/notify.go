package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sad/backend/internal/dto"
	"sad/backend/internal/push"
	"sad/backend/internal/realtime"
	"sad/backend/internal/repository"
	"sad/backend/internal/service"
	"sad/backend/pkg/redis"
)

func newNotifyCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification tools",
	}

	var req dto.TestNotificationRequest
	test := &cobra.Command{
		Use:   "test",
		Short: "Send a test notification to a worker through every channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.WorkerID == "" {
				return errors.New("--worker is required")
			}
			if err := e.openDB(); err != nil {
				return err
			}

			// without redis, connected app sessions live in the server
			// process and will not see the message; push still goes out
			var bus realtime.Bus
			rdb, err := redis.NewClient(&e.cfg.Redis, e.logger)
			if err != nil {
				e.logger.Warn("redis unavailable, realtime delivery skipped", zap.Error(err))
			} else {
				defer rdb.Close()
				bus = rdb
			}

			loc, err := time.LoadLocation(e.cfg.Database.Timezone)
			if err != nil {
				loc = time.UTC
			}

			svc := service.NewNotificationService(repository.NewRepository(e.db), service.Deps{
				Realtime: realtime.NewHub(bus, e.logger),
				Push:     push.NewSender(&e.cfg.Push, e.logger),
				Location: loc,
			}, e.logger)

			resp, err := svc.SendTest(cmd.Context(), &req, "", "")
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	test.Flags().StringVar(&req.WorkerID, "worker", "", "worker id (required)")
	test.Flags().StringVar(&req.Title, "title", "", "title (default: test notification)")
	test.Flags().StringVar(&req.Body, "body", "", "body text")

	cmd.AddCommand(test)
	return cmd
}
