package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"xsync/internal/cmdlog"
	"xsync/internal/config"
	"xsync/internal/jobs"
	"xsync/internal/metrics"
	"xsync/internal/quota"
	"xsync/internal/settings"
	"xsync/internal/syncer"
	"xsync/internal/theme"
	"xsync/internal/vault"
	"xsync/internal/xclient"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "xsync",
		Short:        "Mirror one X account's posts into a markdown vault",
		Long:         "xsync periodically pulls a single X account's public posts and persists each one as a markdown file, deduplicated by path, within a 100-reads-per-month budget.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "./xsync.yaml", "config path")
	root.AddCommand(
		newInitCmd(),
		newSyncCmd(&cfgPath),
		newRunCmd(&cfgPath),
		newStatusCmd(&cfgPath),
	)
	return root
}

// app wires the sync engine from config: settings store seeded with the
// operator-owned fields, vault on the real filesystem, HTTP client.
type app struct {
	cfg    config.Config
	db     *settings.DB
	syncer *syncer.Syncer
}

func wire(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	db, err := settings.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	st, err := db.Load(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	st.ApplyConfig(cfg.Credentials.BearerToken, cfg.Account.Handle, cfg.Sync.IntervalMinutes)
	if err := db.Save(ctx, st); err != nil {
		_ = db.Close()
		return nil, err
	}
	v := vault.New(afero.NewOsFs(), cfg.Storage.VaultPath)
	return &app{
		cfg:    cfg,
		db:     db,
		syncer: syncer.New(xclient.NewHTTPClient(), db, v),
	}, nil
}

func (a *app) close() { _ = a.db.Close() }

func newInitCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			abs, _ := filepath.Abs(path)
			theme.PrintBanner()
			fmt.Println("Config written to:", abs)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "./xsync.yaml", "path to write config")
	return cmd
}

func newSyncCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run a single sync pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdlog.Run("sync", func() error {
				a, err := wire(cmd.Context(), *cfgPath)
				if err != nil {
					return err
				}
				defer a.close()
				rep := jobs.RunSyncOnce(cmd.Context(), a.syncer)
				fmt.Println(rep.Status())
				return rep.Err
			})
		},
	}
}

func newRunCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduled sync loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			a, err := wire(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			metrics.StartServer(a.cfg.Metrics.Addr)
			st, err := a.db.Load(ctx)
			if err != nil {
				return err
			}
			interval := time.Duration(st.IntervalMinutes) * time.Minute
			if err := jobs.RunSyncLoop(ctx, a.syncer, interval); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func newStatusCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show quota usage and cached identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			st, err := a.db.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("handle:      @%s\n", st.Handle)
			fmt.Printf("cached id:   %s\n", orDash(st.CachedUserID))
			fmt.Printf("reads used:  %d/%d (period %s)\n", st.MonthlyRequestCount, quota.MonthlyReadCap, orDash(st.LastResetPeriod))
			fmt.Printf("interval:    %dm\n", st.IntervalMinutes)
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
