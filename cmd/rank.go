package cmd

import (
	"fmt"
	"io"

	"github.com/Ahmed-Sermani/retweetrank/config"
	"github.com/Ahmed-Sermani/retweetrank/ranker"
	"github.com/Ahmed-Sermani/retweetrank/service/rank"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank users of a tweet dump and print the top-K",
	PreRun: func(cmd *cobra.Command, args []string) {
		bindRankFlags(cmd)
	},
	RunE: runRank,
}

func init() {
	rankCmd.Flags().String("events", "", "file with line-delimited tweet JSON objects")
	rankCmd.Flags().Int("ingest-workers", 0, "number of workers decoding tweets (defaults to number of CPUs)")
	rankCmd.Flags().Float64("damping", 0.9, "PageRank damping factor in [0, 1)")
	rankCmd.Flags().Float64("tolerance", 1e-6, "stop once the residual between iterations drops below this value")
	rankCmd.Flags().Int("max-iterations", 1000, "upper bound on PageRank iterations")
	rankCmd.Flags().String("norm", "l1", "residual norm (l1, l2)")
	rankCmd.Flags().String("dangling", "uniform", "treatment of users who retweet nobody (uniform, self-loop)")
	rankCmd.Flags().Int("workers", 0, "number of PageRank compute workers (defaults to number of CPUs)")
	rankCmd.Flags().Int("top", 10, "number of top users to print")
	rankCmd.Flags().String("store-uri", "in-memory://", "score store URI (supported URIs: in-memory://, postgresql://user@host:26257/retweetrank?sslmode=disable)")
	rootCmd.AddCommand(rankCmd)
}

// bindRankFlags binds the flags shared by the rank and run commands to their
// config keys. Binding happens right before a command runs since both
// commands bind the same keys.
func bindRankFlags(cmd *cobra.Command) {
	for key, flag := range map[string]string{
		"rank.events":         "events",
		"rank.ingest_workers": "ingest-workers",
		"rank.damping_factor": "damping",
		"rank.tolerance":      "tolerance",
		"rank.max_iterations": "max-iterations",
		"rank.norm":           "norm",
		"rank.dangling":       "dangling",
		"rank.workers":        "workers",
		"rank.top_k":          "top",
		"rank.store_uri":      "store-uri",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	// a single run; ignore any configured update interval.
	cfg.Rank.UpdateInterval = 0

	svc, closeFn, err := newRankService(cfg.Rank, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	rep, err := svc.RunOnce(cmd.Context())
	if err != nil {
		return err
	}
	printRankReport(cmd.OutOrStdout(), rep)
	return nil
}

func newRankService(cfg config.RankConfig, logger *logrus.Entry) (*rank.Service, func(), error) {
	logger = logger.WithField("service", "rank")
	st, err := openScoreStore(cfg.StoreURI, logger)
	if err != nil {
		return nil, nil, err
	}

	svc, err := rank.NewService(rank.Config{
		EventsPath: cfg.Events,
		Ranker: ranker.Config{
			DampingFactor:  cfg.DampingFactor,
			Tolerance:      cfg.Tolerance,
			MaxIterations:  cfg.MaxIterations,
			Norm:           ranker.Norm(cfg.Norm),
			Dangling:       ranker.DanglingPolicy(cfg.Dangling),
			ComputeWorkers: cfg.Workers,
		},
		TopK:           cfg.TopK,
		IngestWorkers:  cfg.IngestWorkers,
		UpdateInterval: cfg.UpdateInterval,
		Store:          st,
		Logger:         logger,
	})
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	closeFn := func() {
		_ = svc.Close()
		_ = st.Close()
	}
	return svc, closeFn, nil
}

func printRankReport(w io.Writer, rep *rank.Report) {
	fmt.Fprintf(w, "users: %d, edges: %d, iterations: %d, residual: %.3g, converged: %t\n",
		rep.Users, rep.Edges, rep.Result.Iterations, rep.Result.Residual, rep.Result.Converged)
	for i, s := range rep.Top {
		fmt.Fprintf(w, "%3d. %-24s %.6f\n", i+1, s.ID, s.Score)
	}
}
