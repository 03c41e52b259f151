package cmd

import (
	"fmt"
	"io"

	"github.com/Ahmed-Sermani/retweetrank/config"
	"github.com/Ahmed-Sermani/retweetrank/letor"
	"github.com/Ahmed-Sermani/retweetrank/ndcg"
	"github.com/Ahmed-Sermani/retweetrank/service/evaluate"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a LETOR judgement file with a linear model and report NDCG@K",
	PreRun: func(cmd *cobra.Command, args []string) {
		bindEvaluateFlags(cmd)
	},
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().String("judgements", "", "judgement file in the LETOR text format")
	evaluateCmd.Flags().Int("k", 10, "rank cut-off; 0 evaluates full rankings")
	evaluateCmd.Flags().Int("eval-workers", 0, "number of query groups evaluated in parallel (defaults to number of CPUs)")
	evaluateCmd.Flags().Int("score-workers", 0, "number of concurrent scorer calls (defaults to number of CPUs)")
	evaluateCmd.Flags().String("weights", "", "linear model weights as index:weight pairs, e.g. 1:0.5,3:-1")
	evaluateCmd.Flags().Float64("bias", 0, "linear model bias")

	rootCmd.AddCommand(evaluateCmd)
}

func bindEvaluateFlags(cmd *cobra.Command) {
	for key, flag := range map[string]string{
		"evaluate.judgements":    "judgements",
		"evaluate.k":             "k",
		"evaluate.workers":       "eval-workers",
		"evaluate.score_workers": "score-workers",
		"evaluate.weights":       "weights",
		"evaluate.bias":          "bias",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := newEvaluateService(cfg.Evaluate, logger)
	if err != nil {
		return err
	}
	rep, err := svc.RunOnce(cmd.Context())
	if err != nil {
		return err
	}
	printEvaluateReport(cmd.OutOrStdout(), cfg.Evaluate.K, rep)
	return nil
}

func newEvaluateService(cfg config.EvaluateConfig, logger *logrus.Entry) (*evaluate.Service, error) {
	weights, err := letor.ParseWeights(cfg.Weights)
	if err != nil {
		return nil, err
	}

	return evaluate.NewService(evaluate.Config{
		JudgementsPath: cfg.Judgements,
		Scorer:         &letor.LinearScorer{Weights: weights, Bias: cfg.Bias},
		ScoreWorkers:   cfg.ScoreWorkers,
		Evaluator: ndcg.Config{
			K:       cfg.K,
			Workers: cfg.Workers,
		},
		Logger: logger.WithField("service", "evaluate"),
	})
}

func printEvaluateReport(w io.Writer, k int, rep *ndcg.Report) {
	for _, q := range rep.PerQuery {
		fmt.Fprintf(w, "%-16s %.6f\n", q.QueryID, q.NDCG)
	}
	fmt.Fprintf(w, "mean NDCG@%d over %d queries (%d skipped): %.6f\n", k, len(rep.PerQuery), len(rep.Skipped), rep.Mean)
}
