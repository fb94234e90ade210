package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tdiff/tdiff/internal/config"
	"github.com/tdiff/tdiff/pkg/errors"
	"github.com/tdiff/tdiff/pkg/logging"
	"github.com/tdiff/tdiff/pkg/reconcile"
	"github.com/tdiff/tdiff/pkg/sink"
	"github.com/tdiff/tdiff/pkg/source"
	"github.com/tdiff/tdiff/pkg/table"
)

// newRunCmd creates the run command: fetch, snapshot, reconcile, render.
func newRunCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch the input table, reconcile versions, and write reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logging.Default()
	ctx = logging.WithLogger(logging.WithSubject(ctx, cfg.Subject), log)

	schema, err := table.LoadSchema(cfg.SchemaFile)
	if err != nil {
		return err
	}

	src, err := source.NewPostgres(ctx, cfg.Database, cfg.Query)
	if err != nil {
		return err
	}
	defer src.Close()
	log.Info().Str("database", cfg.Database.Database).Msg("Connected")

	if cfg.ScriptFile != "" {
		statements, err := source.LoadScript(cfg.ScriptFile, source.Params{
			Subject: cfg.Subject,
			AsOf:    cfg.AsOf,
		})
		if err != nil {
			return err
		}
		executed, failed, err := src.Prepare(ctx, statements)
		if err != nil {
			return err
		}
		log.Info().Int("executed", executed).Int("failed", failed).Msg("Preparation script finished")
	}

	tbl, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	if tbl.Empty() {
		log.Warn().Msg("Input table is empty; nothing to reconcile")
		return nil
	}
	log.Info().Int("rows", tbl.Len()).Int("columns", len(tbl.Columns)).Msg("Fetched input table")

	stamp := time.Now().Format("20060102150405")

	if cfg.Snapshot {
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s.parquet", cfg.Subject, stamp))
		if err := writeSnapshot(path, tbl); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Snapshot written")
	}

	engine, err := reconcile.New(schema)
	if err != nil {
		return err
	}
	result, err := engine.Reconcile(tbl)
	if err != nil {
		return err
	}

	log.Info().
		Int("groups", result.Stats.Groups).
		Int("pairs", result.Stats.Pairs).
		Int("single_version_groups", result.Stats.SingleVersionGroups).
		Int("duplicate_key_fanouts", result.Stats.DuplicateKeyFanouts).
		Msg(result.String())

	if result.Stats.DuplicateKeyFanouts > 0 {
		log.Warn().Int("fanouts", result.Stats.DuplicateKeyFanouts).
			Msg("Duplicate merge keys within a version; join fanned out")
	}

	if result.Empty() {
		return nil
	}

	for _, format := range cfg.Formats {
		s, err := sinkFor(format, cfg.Subject)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("DIFF_%s_%s.%s", cfg.Subject, stamp, s.Ext()))
		if err := writeReport(path, s, result); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Report written")
	}

	return nil
}

// sinkFor maps a format name onto a report sink.
func sinkFor(format, subject string) (sink.Sink, error) {
	switch format {
	case "csv":
		return sink.NewCSV(), nil
	case "html":
		return sink.NewHTML("Differences for " + subject), nil
	default:
		return nil, errors.NewConfigError("formats", "unknown report format: "+format, nil)
	}
}

func writeReport(path string, s sink.Sink, res *reconcile.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapSink(s.Ext(), path, err)
	}
	defer f.Close()
	return s.Write(f, res)
}

func writeSnapshot(path string, tbl *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapSink("parquet", path, err)
	}
	defer f.Close()
	return sink.WriteSnapshot(f, tbl)
}
