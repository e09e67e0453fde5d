// Command authwatch tracks an authentication session from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/j26/auth-demo/config"
	"github.com/j26/auth-demo/internal/bootstrap"
	"github.com/j26/auth-demo/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

type options struct {
	cookie  string
	logFile string
	lead    time.Duration
}

func rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "authwatch",
		Short: "Watch an authentication session in the terminal",
		Long: `authwatch signs the terminal into the same session as a browser and keeps
an eye on it: who is signed in, when the session expires, and whether it is
refreshed in time.

Copy the Cookie header from a signed-in browser tab and pass it with --cookie
(or WATCH_COOKIE). Keys: r refresh, a toggle auto-refresh, l sign-in link, q quit.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWatcher(cmd, opts, func(ctx context.Context, w *bootstrap.Watcher) error {
				p := tea.NewProgram(tui.New(ctx, w.Tracker), tea.WithContext(ctx))
				_, err := p.Run()
				return err
			})
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cookie, "cookie", "", "Cookie header copied from a signed-in browser (overrides WATCH_COOKIE)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file (overrides WATCH_LOG_FILE)")
	cmd.PersistentFlags().DurationVar(&opts.lead, "lead", 0, "Refresh this long before expiry while auto-refresh is on (overrides WATCH_REFRESH_LEAD)")

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Fetch the session once and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWatcher(cmd, opts, func(ctx context.Context, w *bootstrap.Watcher) error {
				startErr := w.Tracker.Start(ctx)
				v := w.Tracker.Status()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Loading:       %s\n", v.Loading)
				fmt.Fprintf(out, "Authenticated: %s\n", v.Authenticated)
				fmt.Fprintf(out, "Expires at:    %s\n", v.ExpiresAt)
				fmt.Fprintf(out, "Expires in:    %s\n", v.ExpiresIn)
				fmt.Fprintf(out, "Auto-refresh:  %t\n", v.AutoRefresh)
				fmt.Fprintf(out, "User:\n%s\n", v.User)
				return startErr
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "login-url [redirect-path]",
		Short: "Print the sign-in URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			return withWatcher(cmd, opts, func(_ context.Context, w *bootstrap.Watcher) error {
				url, err := w.Tracker.LoginURL(path)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	})

	return cmd
}

// withWatcher loads config, applies flag overrides and hands a ready watcher to fn.
func withWatcher(cmd *cobra.Command, opts options, fn func(context.Context, *bootstrap.Watcher) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg, opts)

	logOut, closeLog, err := openLog(cfg.Watch.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := bootstrap.InitLogger(bootstrap.LoggerOptions{
		Level:  cfg.Observability.LogLevel,
		Dev:    cfg.IsDev,
		Writer: logOut,
	})

	w, err := bootstrap.NewWatcher(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close watcher failed", "error", cerr)
		}
	}()
	return fn(ctx, w)
}

func applyFlags(cmd *cobra.Command, cfg *config.AppConfig, opts options) {
	flags := cmd.Flags()
	if flags.Changed("cookie") {
		cfg.Watch.Cookie = opts.cookie
	}
	if flags.Changed("log-file") {
		cfg.Watch.LogFile = opts.logFile
	}
	if flags.Changed("lead") {
		cfg.Watch.RefreshLead = opts.lead
	}
	cfg.Watch.Sanitize()
}

// openLog keeps logs off the terminal the UI draws on.
func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
