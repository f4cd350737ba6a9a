package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// App holds process configuration derived from flags and environment
// variables. All fields are plain values so the struct can be copied and
// shared across goroutines after construction.
type App struct {
	// Inputs. Locations are local paths or http(s) URLs.
	Train      string
	Test       string
	SchemaPath string
	Delimiter  string

	// Outputs.
	OutDir   string
	Prefix   string
	Workbook bool
	Quiet    bool // suppress the console views

	// Serve, when non-empty, starts the HTTP API on this address after the
	// initial load (if any).
	Serve string
	// DataDir is the only directory the HTTP API may read local paths from.
	// Empty restricts API loads to uploads and http(s) URLs.
	DataDir string

	// Snapshot sink. Empty SinkKind disables it.
	SinkKind      string
	SinkDSN       string
	SinkTable     string
	SinkBatchSize int

	// Metrics.
	MetricsBackend string // "none", "pushgateway" or "datadog"
	PushgatewayURL string
	DatadogAddr    string
	Job            string

	// HTTP datasource tuning.
	HTTPTimeout time.Duration
	HTTPRetries int
}

// LoadFromArgs builds an App config by defining flags on fs, seeding each
// flag's default from getenv, and then parsing args. Callers supply a private
// FlagSet, a getenv func (often backed by a map) and a synthetic arg slice,
// which keeps tests hermetic.
//
// Precedence:
//  1. Environment values (EDA_*) seed each flag's default.
//  2. Explicit CLI flags override the seeded defaults.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*App, error) {
	cfg := &App{}

	envOr := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOr := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolEnvOr := func(k string, d bool) bool {
		switch strings.ToLower(getenv(k)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
		return d
	}
	durEnvOr := func(k string, d time.Duration) time.Duration {
		if v := getenv(k); v != "" {
			if dd, err := time.ParseDuration(v); err == nil {
				return dd
			}
		}
		return d
	}

	// Inputs
	fs.StringVar(&cfg.Train, "train", envOr("EDA_TRAIN", ""), "train source (path or http(s) URL)")
	fs.StringVar(&cfg.Test, "test", envOr("EDA_TEST", ""), "test source (path or http(s) URL)")
	fs.StringVar(&cfg.SchemaPath, "schema", envOr("EDA_SCHEMA", ""), "schema file (.json or .yaml); empty uses the built-in Titanic schema")
	fs.StringVar(&cfg.Delimiter, "delimiter", envOr("EDA_DELIMITER", ","), "CSV field delimiter")

	// Outputs
	fs.StringVar(&cfg.OutDir, "out", envOr("EDA_OUT_DIR", "."), "directory for export artifacts")
	fs.StringVar(&cfg.Prefix, "prefix", envOr("EDA_PREFIX", "titanic"), "file name prefix for export artifacts")
	fs.BoolVar(&cfg.Workbook, "xlsx", boolEnvOr("EDA_XLSX", false), "also write an .xlsx report workbook")
	fs.BoolVar(&cfg.Quiet, "q", boolEnvOr("EDA_QUIET", false), "do not print views to stdout")
	fs.StringVar(&cfg.Serve, "serve", envOr("EDA_SERVE", ""), "serve the HTTP API on this address (e.g. :8080)")
	fs.StringVar(&cfg.DataDir, "data-dir", envOr("EDA_DATA_DIR", ""), "directory the HTTP API may load local paths from (empty allows only uploads and URLs)")

	// Sink
	fs.StringVar(&cfg.SinkKind, "sink", envOr("EDA_SINK", ""), "snapshot sink kind: sqlite, postgres or mssql (empty disables)")
	fs.StringVar(&cfg.SinkDSN, "sink-dsn", envOr("EDA_SINK_DSN", ""), "snapshot sink DSN")
	fs.StringVar(&cfg.SinkTable, "sink-table", envOr("EDA_SINK_TABLE", "merged_data"), "snapshot table name")
	fs.IntVar(&cfg.SinkBatchSize, "sink-batch", intEnvOr("EDA_SINK_BATCH", 500), "rows per snapshot batch")

	// Metrics
	fs.StringVar(&cfg.MetricsBackend, "metrics-backend", envOr("METRICS_BACKEND", "none"), "metrics backend: none, pushgateway or datadog")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway-url", envOr("PUSHGATEWAY_URL", "http://localhost:9091"), "Pushgateway base URL")
	fs.StringVar(&cfg.DatadogAddr, "datadog-addr", envOr("DD_AGENT_ADDR", "127.0.0.1:8125"), "DogStatsD address")
	fs.StringVar(&cfg.Job, "job", envOr("EDA_JOB", "eda"), "job name used for metrics labeling")

	// HTTP datasource
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", durEnvOr("EDA_HTTP_TIMEOUT", 30*time.Second), "per-request timeout for http sources")
	fs.IntVar(&cfg.HTTPRetries, "http-retries", intEnvOr("EDA_HTTP_RETRIES", 3), "retries for http sources on 429/5xx")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is the production entry point: flag.CommandLine, os.Getenv, os.Args[1:].
func Load() (*App, error) {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// DelimiterRune returns the first rune of Delimiter, or ',' when empty.
// "\t" and "tab" select a tab.
func (a *App) DelimiterRune() rune {
	switch a.Delimiter {
	case "":
		return ','
	case `\t`, "tab":
		return '\t'
	}
	return []rune(a.Delimiter)[0]
}

func (a *App) check() error {
	switch a.SinkKind {
	case "":
	case "sqlite", "postgres", "mssql":
		if strings.TrimSpace(a.SinkDSN) == "" {
			return fmt.Errorf("config: -sink %s requires -sink-dsn", a.SinkKind)
		}
		if a.SinkBatchSize <= 0 {
			return fmt.Errorf("config: -sink-batch must be > 0")
		}
	default:
		return fmt.Errorf("config: unknown sink kind %q", a.SinkKind)
	}
	switch a.MetricsBackend {
	case "", "none", "pushgateway", "datadog":
	default:
		return fmt.Errorf("config: unknown metrics backend %q", a.MetricsBackend)
	}
	if a.HTTPRetries < 0 {
		return fmt.Errorf("config: -http-retries must be >= 0")
	}
	return nil
}
