package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/kursadbilgin/registration-engine/internal/config"
	"github.com/kursadbilgin/registration-engine/internal/domain"
	"github.com/kursadbilgin/registration-engine/internal/infra/postgresql"
	"github.com/kursadbilgin/registration-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/registration-engine/internal/infra/redis"
	"github.com/kursadbilgin/registration-engine/internal/observability"
	"github.com/kursadbilgin/registration-engine/internal/repository"
	"github.com/kursadbilgin/registration-engine/internal/service"
	"github.com/spf13/cobra"
)

// settingsStore is the part of service.SettingsService the CLI drives.
type settingsStore interface {
	List(ctx context.Context) ([]domain.Setting, error)
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
	SiteConfig(ctx context.Context) (domain.SiteConfig, error)
}

type opener func(ctx context.Context) (settingsStore, func(), error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openSettings, os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open opener, out io.Writer) *cobra.Command {
	var store settingsStore
	var closeStore func()

	root := &cobra.Command{
		Use:           "settings",
		Short:         "Inspect and change catalog settings",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, closer, err := open(cmd.Context())
			if err != nil {
				return err
			}
			store, closeStore = s, closer
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeStore != nil {
				closeStore()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every stored setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, setting := range settings {
				fmt.Fprintf(w, "%s\t%s\n", setting.Name, setting.Value)
			}
			return w.Flush()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("setting %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store a setting and drop the cached site configuration",
		Long: `Store a setting and drop the cached site configuration.

Examples:
  settings set system/feedback/mailServer/host smtp.example.org
  settings set system/feedback/email catalog@example.org
  settings set system/site/name "My catalog"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return store.Set(cmd.Context(), args[0], args[1])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "site",
		Short: "Show the site configuration registrations run against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := store.SiteConfig(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "mail host\t%s\n", site.MailHost)
			fmt.Fprintf(w, "mail port\t%s\n", site.MailPort)
			fmt.Fprintf(w, "from address\t%s\n", site.FromAddress)
			fmt.Fprintf(w, "site name\t%s\n", site.SiteName)
			fmt.Fprintf(w, "site url\t%s\n", site.SiteURL)
			if err := site.Validate(); err != nil {
				fmt.Fprintf(w, "self registration\tdisabled (%v)\n", err)
			} else {
				fmt.Fprintf(w, "self registration\tenabled\n")
			}
			return w.Flush()
		},
	})

	return root
}

func openSettings(ctx context.Context) (settingsStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, "settings")
	if err != nil {
		return nil, nil, err
	}

	db, err := postgresql.NewPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres initialization failed: %w", err)
	}
	if err := migrations.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}

	rdb, err := infraredis.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("redis initialization failed: %w", err)
	}

	closer := func() {
		_ = rdb.Close()
		_ = sqlDB.Close()
		_ = logger.Sync()
	}

	cache, err := infraredis.NewSiteConfigCache(rdb, cfg.SettingsCacheTTL())
	if err != nil {
		closer()
		return nil, nil, err
	}
	settings, err := service.NewSettingsService(repository.NewGormSettingRepo(db), cache, cfg.SiteBasePath, logger)
	if err != nil {
		closer()
		return nil, nil, err
	}

	return settings, closer, nil
}
