package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cursorbridge/cursorbridge/internal/auth"
	cliconfig "github.com/cursorbridge/cursorbridge/internal/cliconfig"
	"github.com/cursorbridge/cursorbridge/internal/config"
	"github.com/cursorbridge/cursorbridge/internal/diag"
	"github.com/cursorbridge/cursorbridge/internal/httpapi"
	"github.com/cursorbridge/cursorbridge/internal/models"
)

type rootOptions struct {
	configPath  string
	contextName string
	baseURL     string
	cfg         *cliconfig.Config
}

// resolve merges CURSORBRIDGE_* env defaults, the on-disk cliconfig
// context (if one is selected), and explicit flags, in that priority
// order — flags win, env fills gaps the config file leaves open.
func (r *rootOptions) resolve() (config.Config, error) {
	cfg := config.FromEnv()

	loaded, err := cliconfig.Load(r.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load cli config: %w", err)
	}
	r.cfg = loaded

	if loaded != nil {
		ctx, _, err := loaded.Resolve(r.contextName)
		if err != nil {
			return cfg, err
		}
		if ctx != nil {
			if ctx.BaseURL != "" {
				cfg.BaseURL = ctx.BaseURL
			}
			if ctx.WorkspacePath != "" {
				cfg.WorkspacePath = ctx.WorkspacePath
			}
			if ctx.CredentialPath != "" {
				cfg.CredentialPath = ctx.CredentialPath
			}
		}
	}

	if r.baseURL != "" {
		cfg.BaseURL = r.baseURL
	}
	if cfg.CredentialPath == "" {
		cfg.CredentialPath = auth.DefaultCredentialPath()
	}
	return cfg, cfg.Validate()
}

func newLogger(jsonLogs bool) *slog.Logger {
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	return slog.New(handler)
}

func main() {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "cursorbridge",
		Short: "OpenAI-compatible proxy in front of Cursor's Agent protocol",
	}
	defaultConfig := os.Getenv("CURSORBRIDGE_CONFIG")
	if defaultConfig == "" {
		defaultConfig = cliconfig.DefaultConfigPath()
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "path to cursorbridge config file")
	rootCmd.PersistentFlags().StringVar(&opts.contextName, "context", "", "named context to use (overrides currentContext)")
	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Cursor API base URL (overrides config)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newWhoamiCmd(opts))
	rootCmd.AddCommand(newModelsCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd(root *rootOptions) *cobra.Command {
	var logJSON bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the OpenAI-compatible HTTP surface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.resolve()
			if err != nil {
				return err
			}
			cfg.LogJSON = cfg.LogJSON || logJSON
			log := newLogger(cfg.LogJSON)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			creds := auth.NewFileStore(cfg.CredentialPath)
			authCli := auth.NewClient(cfg.AuthBaseURL)

			diagBus, err := diag.New(diag.Options{URL: cfg.NATSURL}, log)
			if err != nil {
				log.Warn("diagnostics bus disabled", "err", err)
				diagBus = nil
			}
			if diagBus != nil {
				defer diagBus.Close()
			}

			catalog := models.NewCatalog(cfg.BaseURL, http.DefaultClient, creds.GetAccess)
			if err := catalog.Refresh(ctx); err != nil {
				log.Warn("model catalog refresh failed, falling back to static table", "err", err)
			}

			srv := httpapi.New(cfg, creds, authCli, catalog, diagBus, log)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			select {
			case <-ctx.Done():
				log.Info("shutting down")
				return nil
			case err := <-errCh:
				return err
			}
		},
	}
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	return cmd
}

func newLoginCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with Cursor via device-code PKCE and persist credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.resolve()
			if err != nil {
				return err
			}
			authCli := auth.NewClient(cfg.AuthBaseURL)
			start, err := auth.StartPKCE()
			if err != nil {
				return fmt.Errorf("start pkce: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to continue login:\n\n  %s\n\n", start.LoginURL)

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			pair, err := authCli.Poll(ctx, start)
			if err != nil {
				return fmt.Errorf("poll for login completion: %w", err)
			}
			if pair == nil {
				return fmt.Errorf("login timed out or was not completed")
			}

			creds := auth.NewFileStore(cfg.CredentialPath)
			if err := creds.SetAuth(pair.AccessToken, pair.RefreshToken, "", pair.ExpiresAtMs); err != nil {
				return fmt.Errorf("persist credentials: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in. Credentials saved to %s\n", cfg.CredentialPath)
			return nil
		},
	}
}

func newWhoamiCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active credential and its expiry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.resolve()
			if err != nil {
				return err
			}
			creds := auth.NewFileStore(cfg.CredentialPath)
			all := creds.GetAll()
			if all.AccessToken == "" && all.APIKey == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintf(w, "credential path:\t%s\n", cfg.CredentialPath)
			if all.APIKey != "" {
				fmt.Fprintf(w, "auth mode:\tapi key\n")
			} else {
				fmt.Fprintf(w, "auth mode:\toauth\n")
				expired := auth.IsExpired(all.AccessToken, all.ExpiresAtMs)
				fmt.Fprintf(w, "access token expired:\t%v\n", expired)
			}
			return w.Flush()
		},
	}
}

func newModelsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model catalog's known entries and their limits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.resolve()
			if err != nil {
				return err
			}
			creds := auth.NewFileStore(cfg.CredentialPath)
			catalog := models.NewCatalog(cfg.BaseURL, http.DefaultClient, creds.GetAccess)
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			if err := catalog.Refresh(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: live catalog refresh failed: %v\n", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintf(w, "MODEL\tCONTEXT\tMAX OUTPUT\n")
			for _, id := range models.StaticModelIDs() {
				l := catalog.Lookup(id)
				fmt.Fprintf(w, "%s\t%d\t%d\n", id, l.ContextWindow, l.MaxOutputTokens)
			}
			return w.Flush()
		},
	}
}
