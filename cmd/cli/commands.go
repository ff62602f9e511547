package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"gora/adapters/excel"
	"gora/adapters/occam"
	"gora/adapters/postgres"
	"gora/app"
	"gora/internal/config"
	"gora/internal/manager"
	"gora/internal/migration"
	"gora/internal/options"
	"gora/ports"
)

// splitArgs separates positional arguments from the run options after "--".
func splitArgs(cmd *cobra.Command, args []string) ([]string, []string) {
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		return args[:dash], args[dash:]
	}
	return args, nil
}

// loadRequest reads the input file and applies the options file and run options,
// in that order, over any options the input file sets.
func (g *globalFlags) loadRequest(path string, runArgs []string) (app.Request, error) {
	logger := g.logger()
	opts := options.NewStandard()
	req := app.Request{Name: filepath.Base(path), Options: opts}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		cfg := excel.Config{Sheet: g.excel.sheet, DV: g.excel.dv, Frequency: g.excel.frequency, Ignore: g.excel.ignore}
		cases, err := excel.NewDataReader(path, cfg, logger).ReadData()
		if err != nil {
			return req, err
		}
		if req.Data, err = excel.ToTable(cases, cfg); err != nil {
			return req, err
		}
	default:
		in, err := occam.NewReader(logger).ReadFile(path, opts)
		if err != nil {
			return req, err
		}
		req.Data = in.Data
	}

	if g.optionsFile != "" {
		f, err := os.Open(g.optionsFile)
		if err != nil {
			return req, fmt.Errorf("open options file: %w", err)
		}
		defer f.Close()
		if err := opts.LoadYAML(f); err != nil {
			return req, fmt.Errorf("%s: %w", g.optionsFile, err)
		}
	}
	if err := opts.SetOptions(runArgs); err != nil {
		return req, err
	}
	return req, nil
}

// repository opens the run store when --save is given.
func (g *globalFlags) repository(ctx context.Context, cfg *config.Config) (ports.RunRepository, func(), error) {
	if !g.save {
		return nil, func() {}, nil
	}
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("--save needs DATABASE_URL")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewRunRepository(db), func() { db.Close() }, nil
}

type runner func(ctx context.Context, settings app.Settings, repo ports.RunRepository, req app.Request) (*app.Result, error)

func (g *globalFlags) fitRunner() runner {
	return func(ctx context.Context, settings app.Settings, repo ports.RunRepository, req app.Request) (*app.Result, error) {
		return app.NewFitService(settings, repo, g.logger()).Fit(ctx, req)
	}
}

func (g *globalFlags) searchRunner() runner {
	return func(ctx context.Context, settings app.Settings, repo ports.RunRepository, req app.Request) (*app.Result, error) {
		return app.NewSearchService(settings, repo, g.logger()).Search(ctx, req)
	}
}

// execute loads the request, runs it and writes the report to out.
func (g *globalFlags) execute(cmd *cobra.Command, args []string, pick func(req app.Request) (runner, error)) error {
	positional, runArgs := splitArgs(cmd, args)
	if len(positional) != 1 {
		return fmt.Errorf("expected one input file, got %d", len(positional))
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	req, err := g.loadRequest(positional[0], runArgs)
	if err != nil {
		return err
	}
	run, err := pick(req)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo, closeRepo, err := g.repository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	res, err := run(ctx, app.SettingsFromConfig(cfg.Analysis), repo, req)
	if err != nil {
		return err
	}
	asHTML := req.Options.GetBool(options.OptHTML)
	out := cmd.OutOrStdout()
	if g.showOptions {
		if err := req.Options.Write(out, asHTML, true); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	if err := writeReport(out, res.Markdown, asHTML); err != nil {
		return err
	}
	if repo != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "saved run %s\n", res.Run.ID)
	}
	return nil
}

func writeReport(w io.Writer, md []byte, asHTML bool) error {
	if asHTML {
		md = manager.RenderHTML(md)
	}
	_, err := w.Write(md)
	return err
}

func newFitCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fit <input> -- -m MODEL [-m MODEL...] [options]",
		Short: "Fit the named models and report their statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.execute(cmd, args, func(app.Request) (runner, error) { return g.fitRunner(), nil })
		},
	}
}

func newSearchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <input> -- [-w WIDTH] [-l LEVELS] [options]",
		Short: "Search down the lattice from the start model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.execute(cmd, args, func(app.Request) (runner, error) { return g.searchRunner(), nil })
		},
	}
}

func newRunCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <input> -- [options]",
		Short: "Fit or search as the input's action option says",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.execute(cmd, args, func(req app.Request) (runner, error) {
				action, _ := req.Options.GetString(options.OptAction)
				switch action {
				case "", "fit":
					return g.fitRunner(), nil
				case "search":
					return g.searchRunner(), nil
				default:
					return nil, fmt.Errorf("unknown action %q", action)
				}
			})
		},
	}
}

func newStatsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <input>",
		Short: "Print the variables and basic statistics of the data",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, runArgs := splitArgs(cmd, args)
			if len(positional) != 1 {
				return fmt.Errorf("expected one input file, got %d", len(positional))
			}
			req, err := g.loadRequest(positional[0], runArgs)
			if err != nil {
				return err
			}
			m, err := manager.New(req.Data.Vars(), req.Data, manager.DefaultConfig(), g.logger())
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), m.BasicStatisticsMarkdown(), req.Options.GetBool(options.OptHTML))
		},
	}
}

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the run options",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, d := range options.NewStandard().Defs() {
				abbrev := ""
				if d.Abbrev != "" {
					abbrev = "-" + d.Abbrev + ", "
				}
				fmt.Fprintf(out, "  %s--%s\t%s\n", abbrev, d.Name, d.Tip)
			}
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the run tables in DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}
			db, err := sqlx.ConnectContext(cmd.Context(), "postgres", cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer db.Close()
			runner := migration.NewRunner()
			if err := runner.Run(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %s\n", runner.Version())
			return nil
		},
	}
}
