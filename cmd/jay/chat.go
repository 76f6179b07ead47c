package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jaycli/jay/internal/conversation"
	jayErrors "github.com/jaycli/jay/internal/errors"
	"github.com/jaycli/jay/internal/orchestrator"
	"github.com/jaycli/jay/internal/store"

	"charm.land/lipgloss/v2"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long:  `Read user turns from the terminal and run them through the agent loop. Ctrl-C cancels the in-flight turn; a second Ctrl-C exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(true, func(c *components) error {
			return runChat(cmd.Context(), c)
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// stdoutSink prints answer deltas as they arrive.
type stdoutSink struct{}

func (stdoutSink) OnDelta(delta string) { fmt.Print(delta) }

type chatSession struct {
	components *components
	engine     *orchestrator.Engine
	conv       *conversation.Conversation
	sessionID  string
	persisted  int
	sigs       chan os.Signal
}

func runChat(ctx context.Context, c *components) error {
	engine := orchestrator.NewEngine(orchestrator.Options{
		Client:     c.Client,
		Executor:   c.Executor,
		Registry:   c.Registry,
		TurnBudget: cfg.Agent.TurnBudget,
		Sink:       stdoutSink{},
	})

	s := &chatSession{
		components: c,
		engine:     engine,
		conv:       conversation.New(cfg.Agent.SystemPrompt),
		sessionID:  store.NewSessionID(),
		sigs:       make(chan os.Signal, 2),
	}
	s.persisted = s.conv.Len()

	signal.Notify(s.sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.sigs)

	fmt.Printf("jay session %s (workspace %s)\n", dimStyle.Render(s.sessionID), c.Sandbox.Root())
	fmt.Println(dimStyle.Render("Type /exit to quit, /tools to list tools."))

	reader := bufio.NewReader(os.Stdin)
	for {
		// A Ctrl-C delivered while idle at the prompt exits.
		select {
		case <-s.sigs:
			fmt.Println()
			return nil
		default:
		}

		fmt.Print(promptStyle.Render("> "))
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			exit, err := s.handleSlash(ctx, line)
			if err != nil {
				fmt.Println(errorStyle.Render(err.Error()))
			}
			if exit {
				return nil
			}
			continue
		}

		s.runTurn(ctx, line)
	}
}

func (s *chatSession) runTurn(ctx context.Context, input string) {
	turnCtx, cancel := context.WithCancel(ctx)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-s.sigs:
				if turnCtx.Err() != nil {
					// Second interrupt while the turn unwinds.
					os.Exit(130)
				}
				fmt.Println(dimStyle.Render("\n(interrupted)"))
				cancel()
			case <-stop:
				return
			}
		}
	}()

	result := s.engine.RunTurn(turnCtx, s.conv, input)
	cancel()
	close(stop)

	switch result.Status {
	case orchestrator.StatusDone:
		fmt.Println()
	case orchestrator.StatusNeedsInput:
		fmt.Println(questionStyle.Render(result.Question))
	case orchestrator.StatusFailed:
		if result.Err != nil {
			msg := fmt.Sprintf("turn failed [%s]: %v", jayErrors.Category(result.Err), result.Err)
			if jayErrors.UserRetryHint(result.Err) {
				msg += " (retrying may help)"
			}
			fmt.Println(errorStyle.Render(msg))
		}
	}

	s.persistNewMessages()
}

// persistNewMessages appends everything committed since the last turn to
// the session transcript, one JSON line per message.
func (s *chatSession) persistNewMessages() {
	msgs := s.conv.Messages()
	for ; s.persisted < len(msgs); s.persisted++ {
		line, err := json.Marshal(msgs[s.persisted])
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("persist message: %v", err)))
			return
		}
		if err := s.components.Store.AppendTranscript(s.sessionID, line); err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("persist message: %v", err)))
			return
		}
	}
}

func (s *chatSession) handleSlash(ctx context.Context, line string) (exit bool, err error) {
	fields, err := shlex.Split(line)
	if err != nil {
		fields = strings.Fields(line)
	}
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "/exit", "/quit":
		return true, nil

	case "/reset":
		if err := s.components.Store.ResetSession(s.sessionID); err != nil {
			return false, err
		}
		s.conv = conversation.New(cfg.Agent.SystemPrompt)
		s.persisted = s.conv.Len()
		s.sessionID = store.NewSessionID()
		fmt.Println(dimStyle.Render("session reset: " + s.sessionID))
		return false, nil

	case "/history":
		for _, m := range s.conv.Messages() {
			content := m.Content
			if content == "" && len(m.ToolCalls) > 0 {
				names := make([]string, 0, len(m.ToolCalls))
				for _, tc := range m.ToolCalls {
					names = append(names, tc.Name)
				}
				content = "[tool calls: " + strings.Join(names, ", ") + "]"
			}
			fmt.Printf("%s %s\n", dimStyle.Render(m.Role+":"), content)
		}
		return false, nil

	case "/tools":
		fmt.Println(renderToolTable(s.components.Registry))
		return false, nil

	case "/search":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /search <query>")
		}
		query := strings.Join(fields[1:], " ")
		hits, err := s.components.Index.Query(ctx, query, cfg.Index.TopK)
		if err != nil {
			return false, err
		}
		if len(hits) == 0 {
			fmt.Println(dimStyle.Render("no matches"))
			return false, nil
		}
		for _, hit := range hits {
			fmt.Printf("%s %s\n%s\n", dimStyle.Render(fmt.Sprintf("[%.3f]", hit.Score)), hit.ChunkID, hit.Snippet)
		}
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s (try /exit, /reset, /history, /tools, /search)", fields[0])
	}
}
