package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage chat sessions",
	Long:  `List, reset and export session transcripts for the current workspace.`,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(true, func(c *components) error {
			sessions, err := c.Store.ListSessions()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions yet. Run `jay chat` to start one.")
				return nil
			}
			fmt.Println(renderSessionTable(sessions))
			return nil
		})
	},
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset [id]",
	Short: "Delete a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(true, func(c *components) error {
			if err := c.Store.ResetSession(args[0]); err != nil {
				return err
			}
			fmt.Printf("session %s reset\n", args[0])
			return nil
		})
	},
}

var sessionExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Print a session transcript as JSONL",
	Long:  `Print the transcript one JSON object per line, one line per message, in conversation order.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(true, func(c *components) error {
			lines, err := c.Store.ReadTranscript(args[0], 0)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return fmt.Errorf("session %s has no transcript", args[0])
			}
			for _, line := range lines {
				fmt.Println(line)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionResetCmd)
	sessionCmd.AddCommand(sessionExportCmd)
}
