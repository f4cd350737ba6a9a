package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"eda/internal/config"
	"eda/internal/datasource"
	"eda/internal/datasource/httpds"
	"eda/internal/export"
	"eda/internal/metrics"
	"eda/internal/metrics/datadog"
	"eda/internal/metrics/prompush"
	"eda/internal/parser"
	"eda/internal/session"
	"eda/internal/storage"
	"eda/internal/webui"
)

// run executes one CLI invocation. It is main without the process exits so
// tests can drive it with synthetic args and environment.
func run(ctx context.Context, args []string, getenv func(string) string, stdout io.Writer) error {
	fs := flag.NewFlagSet("eda", flag.ContinueOnError)
	cfg, err := config.LoadFromArgs(fs, getenv, args)
	if err != nil {
		return err
	}

	schema, err := config.LoadSchema(cfg.SchemaPath)
	if err != nil {
		return err
	}
	issues := config.ValidateSchema(schema)
	for _, iss := range issues {
		log.Printf("schema: %s: %s: %s", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("schema is invalid: %s", schemaName(cfg.SchemaPath))
	}

	flush := setupMetrics(cfg)
	defer flush()

	client := httpds.NewClient(httpds.Config{Timeout: cfg.HTTPTimeout, MaxRetries: cfg.HTTPRetries})
	sess := session.New(schema, session.Options{
		Parser: parser.Options{Comma: cfg.DelimiterRune()},
		Job:    cfg.Job,
	})

	// With -serve and no inputs, start empty and wait for POST /api/load.
	if cfg.Serve == "" || cfg.Train != "" || cfg.Test != "" {
		if err := loadAndReport(ctx, cfg, sess, client, stdout); err != nil {
			return err
		}
	}

	if cfg.Serve != "" {
		h := webui.NewRouter(sess, webui.Options{Prefix: cfg.Prefix, Client: client, DataDir: cfg.DataDir})
		return webui.Serve(ctx, cfg.Serve, h)
	}
	return nil
}

func loadAndReport(ctx context.Context, cfg *config.App, sess *session.Session, client *httpds.Client, stdout io.Writer) error {
	start := time.Now()
	l, err := sess.Load(ctx, datasource.Resolve(cfg.Train, client), datasource.Resolve(cfg.Test, client))
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	if !cfg.Quiet {
		if err := printViews(stdout, sess); err != nil {
			return err
		}
	}
	if err := writeArtifacts(cfg, sess); err != nil {
		return err
	}
	if cfg.SinkKind != "" {
		if err := snapshot(ctx, cfg, sess, l); err != nil {
			return err
		}
	}
	log.Printf("eda: done id=%s records=%d elapsed=%s", l.LoadID, l.Dataset.Len(), time.Since(start).Truncate(time.Millisecond))
	return nil
}

// writeArtifacts writes <prefix>_merged_data.csv, <prefix>_data_summary.json
// and, with -xlsx, <prefix>_report.xlsx into the output directory.
func writeArtifacts(cfg *config.App, sess *session.Session) error {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("export: create out dir: %w", err)
	}
	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{export.CSVFileName(cfg.Prefix), sess.ExportCSV},
		{export.SummaryFileName(cfg.Prefix), sess.ExportSummary},
	}
	if cfg.Workbook {
		outputs = append(outputs, struct {
			name  string
			write func(io.Writer) error
		}{export.WorkbookFileName(cfg.Prefix), sess.ExportWorkbook})
	}
	for _, o := range outputs {
		path := filepath.Join(cfg.OutDir, o.name)
		if err := writeFileAtomic(path, o.write); err != nil {
			return err
		}
		log.Printf("export: wrote path=%s", path)
	}
	return nil
}

// writeFileAtomic writes to a temporary sibling and renames it over path, so
// a failed export never leaves a truncated artifact behind.
func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = write(tmp); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("export: rename %s: %w", path, err)
	}
	return nil
}

func snapshot(ctx context.Context, cfg *config.App, sess *session.Session, l *session.Loaded) error {
	repo, err := storage.New(ctx, storage.Config{Kind: cfg.SinkKind, DSN: cfg.SinkDSN, Table: cfg.SinkTable})
	if err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	defer repo.Close()

	dialect, err := storage.DialectFor(cfg.SinkKind)
	if err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	n, err := storage.WriteSnapshot(ctx, repo, dialect, l.Dataset, sess.Schema(), storage.SnapshotOptions{
		Table:     cfg.SinkTable,
		BatchSize: cfg.SinkBatchSize,
		Job:       cfg.Job,
	})
	if err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	log.Printf("sink: kind=%s table=%s inserted=%d", cfg.SinkKind, cfg.SinkTable, n)
	return nil
}

// setupMetrics installs the configured backend and returns its flush func.
// A backend that fails to initialize leaves metrics disabled.
func setupMetrics(cfg *config.App) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.MetricsBackend {
	case "pushgateway":
		b, err = prompush.NewBackend(cfg.Job, cfg.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.DatadogAddr,
			Namespace:  "eda.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
	default:
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", cfg.MetricsBackend, err)
		return func() {}
	}
	log.Printf("metrics: backend=%s job_name=%s", cfg.MetricsBackend, cfg.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func schemaName(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}
