package main

import (
	"fmt"
	"os"

	"github.com/jaycli/jay/internal/config"
	"github.com/jaycli/jay/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "jay",
	Short: "jay terminal agent",
	Long:  `jay turns natural-language requests into sandboxed tool invocations on the local machine, driven by an OpenAI-compatible model endpoint.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.Log.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.jay/config.yaml)")
	rootCmd.PersistentFlags().String("log.level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("model.name", config.DefaultModelName, "model identifier sent to the endpoint")
	rootCmd.PersistentFlags().String("model.base_url", config.DefaultModelBaseURL, "OpenAI-compatible endpoint base URL")
	rootCmd.PersistentFlags().String("sandbox.workspace", "", "workspace root (default is the current directory)")
	rootCmd.PersistentFlags().String("agent.workspace_id", config.DefaultAgentWorkspaceID, "workspace ID for transcripts and the vector index")
}
