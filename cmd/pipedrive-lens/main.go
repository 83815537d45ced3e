package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/golovatskygroup/pipedrive-lens/internal/audit"
	"github.com/golovatskygroup/pipedrive-lens/internal/config"
	"github.com/golovatskygroup/pipedrive-lens/internal/pipedrive"
	"github.com/golovatskygroup/pipedrive-lens/internal/prompts"
	"github.com/golovatskygroup/pipedrive-lens/internal/registry"
	"github.com/golovatskygroup/pipedrive-lens/internal/server"
	"github.com/golovatskygroup/pipedrive-lens/internal/tools"
)

type rootOptions struct {
	configPath string
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func newRootCmd() *cobra.Command {
	opts := rootOptions{}

	root := &cobra.Command{
		Use:   "pipedrive-lens",
		Short: "Read-only MCP server over the Pipedrive CRM API",
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to config file")

	root.AddCommand(
		newServeCmd(&opts),
		newToolsCmd(&opts),
		newAuditCmd(&opts),
	)

	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool catalog to an MCP host over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			// Refusing to serve beats serving a catalog where every call
			// would fail with an auth error.
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := buildLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			client := pipedrive.New(cfg.BaseURL, cfg.APIToken, cfg.UpstreamTimeout, logger)
			handler := tools.NewHandler(client, tools.Options{
				PageSize:   cfg.PageSize,
				MaxRecords: cfg.MaxRecords,
			}, logger)

			reg := registry.New()
			for _, d := range handler.Catalog() {
				if err := reg.Register(d); err != nil {
					return err
				}
			}

			var auditLog *audit.Log
			if cfg.AuditDB != "" {
				auditLog, err = audit.Open(cfg.AuditDB)
				if err != nil {
					return err
				}
				defer auditLog.Close()
			}

			srv := server.New(server.Options{
				Registry: reg,
				Prompts:  prompts.Catalog(),
				Audit:    auditLog,
				Logger:   logger,
			})
			return srv.Run(ctx)
		},
	}
}

func newToolsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools [query]",
		Short: "Print the tool catalog, optionally filtered by a search query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			// Listing the catalog needs no credential; the client is never
			// called here.
			client := pipedrive.New(cfg.BaseURL, cfg.APIToken, cfg.UpstreamTimeout, nil)
			handler := tools.NewHandler(client, tools.Options{
				PageSize:   cfg.PageSize,
				MaxRecords: cfg.MaxRecords,
			}, nil)

			reg := registry.New()
			for _, d := range handler.Catalog() {
				if err := reg.Register(d); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				matches := reg.Search(args[0])
				if len(matches) == 0 {
					fmt.Fprintf(out, "no tools match %q\n", args[0])
					return nil
				}
				for _, m := range matches {
					fmt.Fprintf(out, "%-22s %-14s %s\n", m.Name, m.Category, m.Description)
				}
				return nil
			}

			for _, category := range reg.Categories() {
				fmt.Fprintf(out, "%s:\n", category)
				for _, d := range reg.List() {
					if d.Category != category {
						continue
					}
					fmt.Fprintf(out, "  %-22s %s\n", d.Tool.Name, d.Tool.Description)
				}
			}
			fmt.Fprintf(out, "\n%d tools\n", reg.Count())
			return nil
		},
	}
}

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print recent tool invocations from the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cfg.AuditDB == "" {
				return errors.New("no audit_db configured; set it in the config file to enable auditing")
			}

			auditLog, err := audit.Open(cfg.AuditDB)
			if err != nil {
				return err
			}
			defer auditLog.Close()

			entries, err := auditLog.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no invocations recorded")
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s  %-5s  %-22s %5dms",
					e.InvokedAt.Format(time.RFC3339), e.Status, e.Tool, e.DurationMS)
				if e.ErrorSummary != "" {
					line += "  " + e.ErrorSummary
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries to print")
	return cmd
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch level {
	case "", "info":
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return cfg.Build()
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
