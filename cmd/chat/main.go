package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"portfolio-backend/internal/chat"
	"portfolio-backend/internal/client"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/faq"
	"portfolio-backend/internal/logging"
	"portfolio-backend/internal/tui"
)

type options struct {
	apiURL  string
	timeout time.Duration
	logFile string
}

func main() {
	cfg := config.LoadClient()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "chat",
		Short:         "Talk to Safir's AI portfolio assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			closeLog, err := setupLogging(opts.logFile, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			m := tui.New(ctx, newController(opts), tui.WithScrollThreshold(cfg.ScrollThreshold))
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", cfg.APIURL, "Base URL of the portfolio backend")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", cfg.Timeout, "Give up on the backend after this long (0 waits forever)")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Write debug logs to this file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "ask <message>",
		Short: "Ask one question and stream the reply to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			closeLog, err := setupLogging(opts.logFile, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			out := cmd.OutOrStdout()
			ctrl := newController(opts, chat.WithGreeting(""), chat.WithObserver(newPrinter(out).observe))
			outcome := ctrl.Submit(ctx, strings.Join(args, " "))
			fmt.Fprintln(out)
			if outcome == chat.OutcomeRejected {
				return fmt.Errorf("message is empty")
			}
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "faq <message>",
		Short: "Print the offline FAQ answer for a message",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			topic, answer := faq.Classify(strings.Join(args, " "))
			log.Debug().Str("topic", topic).Msg("faq match")
			fmt.Fprintln(cmd.OutOrStdout(), answer)
		},
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setupLogging(path, level string) (func() error, error) {
	_, closeLog, err := logging.SetupFile(path, level)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return closeLog, nil
}

func newController(opts *options, extra ...chat.Option) *chat.Controller {
	c := client.New(opts.apiURL)
	log.Debug().Str("url", c.ChatURL()).Msg("chat endpoint")

	return chat.New(c, append([]chat.Option{chat.WithTimeout(opts.timeout)}, extra...)...)
}

// printer writes only the text that is new since the previous snapshot.
type printer struct {
	out     io.Writer
	turn    int
	written int
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, turn: -1}
}

func (p *printer) observe(s chat.Snapshot) {
	last, ok := s.Last()
	if !ok || last.Role != chat.RoleAssistant {
		return
	}
	idx := len(s.Turns) - 1
	if idx != p.turn {
		if p.turn >= 0 {
			fmt.Fprint(p.out, "\n\n")
		}
		p.turn, p.written = idx, 0
	}
	if len(last.Content) > p.written {
		fmt.Fprint(p.out, last.Content[p.written:])
		p.written = len(last.Content)
	}
}
