package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jaycli/jay/internal/config"

	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec [command...]",
	Short: "Run one command line through the sandbox directly",
	Long:  `Classify and execute a command under the same confinement the run_shell tool uses, without involving the model.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(false, func(c *components) error {
			commandLine := strings.Join(args, " ")

			if err := c.Sandbox.ClassifyCommand(commandLine); err != nil {
				return err
			}

			timeout, err := config.DurationOrDefault(cfg.Tools.Shell.Timeout, config.DefaultShellToolTimeout)
			if err != nil {
				return err
			}

			result, err := c.Sandbox.RunProcess(cmd.Context(), []string{"/bin/sh", "-c", commandLine}, "", nil, timeout)
			if err != nil {
				return err
			}

			fmt.Print(result.Stdout)
			fmt.Fprint(os.Stderr, result.Stderr)
			if result.TimedOut {
				return fmt.Errorf("command timed out after %s", timeout)
			}
			if result.ExitCode != 0 {
				os.Exit(result.ExitCode)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
