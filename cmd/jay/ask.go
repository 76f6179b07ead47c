package main

import (
	"fmt"
	"strings"

	"github.com/jaycli/jay/internal/conversation"
	jayErrors "github.com/jaycli/jay/internal/errors"
	"github.com/jaycli/jay/internal/orchestrator"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Run a single prompt through one agent turn",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(false, func(c *components) error {
			engine := orchestrator.NewEngine(orchestrator.Options{
				Client:     c.Client,
				Executor:   c.Executor,
				Registry:   c.Registry,
				TurnBudget: cfg.Agent.TurnBudget,
				Sink:       stdoutSink{},
			})

			conv := conversation.New(cfg.Agent.SystemPrompt)
			result := engine.RunTurn(cmd.Context(), conv, strings.Join(args, " "))

			switch result.Status {
			case orchestrator.StatusDone:
				fmt.Println()
				return nil
			case orchestrator.StatusNeedsInput:
				fmt.Println(questionStyle.Render(result.Question))
				return fmt.Errorf("the model needs more input; use `jay chat` for multi-turn sessions")
			default:
				return fmt.Errorf("turn failed [%s]: %w", jayErrors.Category(result.Err), result.Err)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
