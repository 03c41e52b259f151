package cmd

import (
	"fmt"
	"os"

	"github.com/Ahmed-Sermani/retweetrank/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

var (
	appName = "retweetrank"
	appSha  = ""
)

var rootCmd = &cobra.Command{
	Use:           "retweetrank",
	Short:         "Rank Twitter users by PageRank over the retweet graph",
	Long:          "retweetrank builds a retweet graph from tweet dumps, ranks its users with PageRank and evaluates rankings with NDCG.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .retweetrank.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".retweetrank")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	config.BindEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// loadConfig loads the merged configuration and returns it together with
// the root logger.
func loadConfig() (config.Config, *logrus.Entry, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, xerrors.Errorf("log level: %w", err)
	}
	rootLogger := logrus.New()
	rootLogger.SetLevel(level)
	logger := rootLogger.WithFields(logrus.Fields{
		"app": appName,
		"sha": appSha,
	})
	return cfg, logger, nil
}
