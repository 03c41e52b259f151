package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ahmed-Sermani/retweetrank/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the rank job periodically and, if judgements are configured, the evaluate job",
	PreRun: func(cmd *cobra.Command, args []string) {
		bindRankFlags(cmd)
		bindEvaluateFlags(cmd)
		_ = viper.BindPFlag("rank.update_interval", cmd.Flags().Lookup("update-interval"))
	},
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("events", "", "file with line-delimited tweet JSON objects")
	runCmd.Flags().Int("workers", 0, "number of PageRank compute workers (defaults to number of CPUs)")
	runCmd.Flags().String("store-uri", "in-memory://", "score store URI (supported URIs: in-memory://, postgresql://user@host:26257/retweetrank?sslmode=disable)")
	runCmd.Flags().Duration("update-interval", time.Hour, "the time between subsequent ranking runs")
	runCmd.Flags().String("judgements", "", "judgement file in the LETOR text format")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Rank.UpdateInterval == 0 {
		cfg.Rank.UpdateInterval, _ = cmd.Flags().GetDuration("update-interval")
	}

	var svcGroup service.Group
	rankSvc, closeFn, err := newRankService(cfg.Rank, logger)
	if err != nil {
		return err
	}
	defer closeFn()
	svcGroup = append(svcGroup, rankSvc)

	if cfg.Evaluate.Judgements != "" {
		evalSvc, err := newEvaluateService(cfg.Evaluate, logger)
		if err != nil {
			return err
		}
		svcGroup = append(svcGroup, evalSvc)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)
	defer cancel()

	return svcGroup.Run(ctx)
}
