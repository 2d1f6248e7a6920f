package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/MatthewGuile/hellopeter-cli/internal/adapters/hellopeter"
	server "github.com/MatthewGuile/hellopeter-cli/internal/adapters/http_server"
	"github.com/MatthewGuile/hellopeter-cli/internal/adapters/observability"
	"github.com/MatthewGuile/hellopeter-cli/internal/app"
	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
	"github.com/MatthewGuile/hellopeter-cli/internal/export"
	"github.com/MatthewGuile/hellopeter-cli/internal/shared"
	"github.com/MatthewGuile/hellopeter-cli/internal/storage/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logFile string

	root := &cobra.Command{
		Use:          "hellopeter",
		Short:        "Extract reviews and statistics from Hellopeter",
		Version:      shared.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env := os.Getenv("APP_ENV")
			if logFile != "" {
				l, err := observability.NewLoggerWithFile(env, logFile)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				log.Logger = l
				return nil
			}
			log.Logger = observability.NewLogger(env)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")

	root.AddCommand(newFetchCmd(), newResetCmd(), newExportCmd(), newServeCmd())
	return root
}

func newFetchCmd() *cobra.Command {
	var (
		businesses   []string
		startPage    int
		endPage      int
		statsOnly    bool
		reviewsOnly  bool
		outputFormat string
		outputDir    string
		forceRefresh bool
		dbPath       string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch reviews and statistics for the given businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(businesses) == 0 {
				return fmt.Errorf("no businesses specified; provide at least one slug via --businesses")
			}
			if outputFormat != "db" && outputFormat != "csv" && outputFormat != "json" {
				return fmt.Errorf("unknown output format %q (want db, csv, or json)", outputFormat)
			}

			cfg := shared.Load()
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			observability.Serve(cfg.MetricsAddr)

			client := hellopeter.New(hellopeter.Config{
				ReviewsBase:   cfg.ReviewsBaseURL,
				StatsBase:     cfg.StatsBaseURL,
				RequestDelay:  cfg.RequestDelay,
				MaxRetries:    cfg.MaxRetries,
				BackoffBase:   cfg.BackoffBase,
				BackoffFactor: cfg.BackoffFactor,
				UserAgent:     shared.UserAgent(),
			})

			var (
				store *sqlite.Repo
				sink  app.Sink
			)
			if outputFormat == "db" {
				repo, err := sqlite.Open(cfg.DBPath)
				if err != nil {
					// The chosen sink degrades rather than aborting the run.
					log.Error().Err(err).Msg("database unavailable, falling back to CSV output")
					outputFormat = "csv"
				} else {
					defer repo.Close()
					store = repo
					sink = app.StoreSink{Store: repo}
				}
			}
			switch outputFormat {
			case "csv":
				sink = export.CSVSink{Dir: cfg.OutputDir}
			case "json":
				sink = export.JSONSink{Dir: cfg.OutputDir}
			}

			// A plain nil *sqlite.Repo must not reach the interface-typed
			// parameter, or the runner's nil check would pass.
			var runnerStore domain.ReviewStore
			if store != nil {
				runnerStore = store
			}
			runner := app.NewRunner(app.NewFetchService(client), runnerStore, sink)
			runner.Run(cmd.Context(), app.RunOptions{
				Businesses:   businesses,
				StartPage:    startPage,
				EndPage:      endPage,
				StatsOnly:    statsOnly,
				ReviewsOnly:  reviewsOnly,
				ForceRefresh: forceRefresh,
			})
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&businesses, "businesses", nil, "business slugs to fetch (e.g. bank-zero-mutual-bank)")
	cmd.Flags().IntVar(&startPage, "start-page", 1, "page number to start fetching reviews from")
	cmd.Flags().IntVar(&endPage, "end-page", 0, "page number to stop fetching at (0 = all pages)")
	cmd.Flags().BoolVar(&statsOnly, "stats-only", false, "only fetch business statistics")
	cmd.Flags().BoolVar(&reviewsOnly, "reviews-only", false, "only fetch reviews")
	cmd.Flags().StringVar(&outputFormat, "output-format", "csv", "output format: db, csv, or json")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for CSV/JSON output files")
	cmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "refetch all reviews, ignoring what the database already holds")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database file")
	return cmd
}

func newResetCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate the database schema (deletes all stored data)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := shared.Load()
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			repo, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			log.Info().Str("db", cfg.DBPath).Msg("resetting database")
			if err := repo.Reset(cmd.Context()); err != nil {
				return err
			}
			log.Info().Msg("database reset completed")
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database file")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		business  string
		outputDir string
		dbPath    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored businesses, reviews, and stats to CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := shared.Load()
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			repo, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			return export.DumpTables(cmd.Context(), repo, cfg.OutputDir, business)
		},
	}
	cmd.Flags().StringVar(&business, "business", "", "restrict the export to one business slug")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for exported CSV files")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database file")
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		addr   string
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only HTTP API over the stored data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := shared.Load()
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			repo, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			srv := server.New()
			srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
			srv.MountHandlers(&server.Handlers{Q: app.NewQueryService(repo)})

			log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
			httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database file")
	return cmd
}
