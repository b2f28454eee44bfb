package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfletch/tidyherd/internal/config"
	"github.com/mfletch/tidyherd/internal/dispatch"
	"github.com/mfletch/tidyherd/internal/doctor"
	"github.com/mfletch/tidyherd/internal/log"
	"github.com/mfletch/tidyherd/internal/override"
	"github.com/mfletch/tidyherd/internal/report"
	"github.com/mfletch/tidyherd/internal/runlog"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "run":
		os.Exit(runRun(args))
	case "doctor":
		os.Exit(runDoctor(args))
	case "config":
		os.Exit(runConfigNoun(args))
	case "version":
		fmt.Printf("tidyherd version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`tidyherd - Parallel static-analysis driver

Usage:
  tidyherd <command> [flags]

Commands:
  run            Analyze every candidate file under the root in parallel
  doctor         Validate the environment without running anything
  config check   Validate config syntax and integrity
  config lock    Authorize current config state (update integrity hashes)
  version        Show version information
  help           Show this help message

Run flags:
  --config FILE     Configuration file (optional)
  --root DIR        Analysis root directory (default .)
  --build-dir DIR   Compilation-database directory (-p)
  --tool PATH       Analysis tool binary (default clang-tidy)
  --checks STR      Global check-filter string
  --fix             Apply suggested fixes
  --jobs N          Worker count (default: number of CPUs)
  --log-db FILE     Record per-task results to a SQLite run log
  --log-level L     DEBUG, INFO, WARN, or ERROR
`)
}

// targetFlags carries the run/doctor flag set plus which flags were
// explicitly set, so flags can override config file values.
type targetFlags struct {
	configPath string
	root       string
	buildDir   string
	tool       string
	checks     string
	fix        bool
	jobs       int
	logDB      string
	logLevel   string
	jsonOut    bool

	set map[string]bool
}

func parseTargetFlags(name string, args []string, withJSON bool) (*targetFlags, error) {
	f := &targetFlags{set: make(map[string]bool)}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&f.root, "root", "", "Analysis root directory")
	fs.StringVar(&f.buildDir, "build-dir", "", "Compilation-database directory")
	fs.StringVar(&f.tool, "tool", "", "Analysis tool binary")
	fs.StringVar(&f.checks, "checks", "", "Global check-filter string")
	fs.BoolVar(&f.fix, "fix", false, "Apply suggested fixes")
	fs.IntVar(&f.jobs, "jobs", 0, "Worker count")
	fs.StringVar(&f.logDB, "log-db", "", "SQLite run-log path")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level")
	if withJSON {
		fs.BoolVar(&f.jsonOut, "json", false, "Output report in JSON")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// buildConfig loads the config file when given, applies defaults otherwise,
// and overlays explicitly-set flags on top.
func buildConfig(f *targetFlags) (*config.Config, error) {
	var cfg *config.Config
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		if err := config.VerifyChecksums(f.configPath); err != nil {
			if errors.Is(err, config.ErrNoChecksums) {
				fmt.Fprintf(os.Stderr, "Warning: %v; run 'tidyherd config lock' to enable integrity verification\n", err)
			} else {
				return nil, err
			}
		}
		cfg = loaded
	} else {
		cfg = config.Defaults()
	}

	if f.set["root"] {
		cfg.Root = f.root
	}
	if f.set["build-dir"] {
		cfg.BuildDir = f.buildDir
	}
	if f.set["tool"] {
		cfg.Tool = f.tool
	}
	if f.set["checks"] {
		cfg.Checks = f.checks
	}
	if f.set["fix"] {
		cfg.Fix = f.fix
	}
	if f.set["jobs"] {
		cfg.Jobs = f.jobs
	}
	if f.set["log-db"] {
		cfg.LogDB = f.logDB
	}
	if f.set["log-level"] {
		cfg.LogLevel = f.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runRun(args []string) int {
	f, err := parseTargetFlags("run", args, false)
	if err != nil {
		return 1
	}

	cfg, err := buildConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.LogLevel)
	logger := log.WithComponent("main")

	// Preconditions are checked here, once; the dispatcher trusts them.
	result := doctor.Check(cfg)
	for _, w := range result.Warnings {
		logger.Warn(w.Message, "category", w.Category, "field", w.Field)
	}
	if !result.Valid {
		fmt.Fprint(os.Stderr, doctor.FormatHuman(result))
		return 1
	}

	// Interruption kills the whole process group, in-flight tool subprocesses
	// included. No graceful drain: partial output is worthless to an
	// interactive user and the next run redoes the work anyway.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("interrupted, terminating process group", "signal", sig.String())
		_ = syscall.Kill(0, syscall.SIGKILL)
	}()

	ctx := context.Background()

	var recorder dispatch.Recorder
	if cfg.LogDB != "" {
		store, err := runlog.Open(ctx, cfg.LogDB)
		if err != nil {
			logger.Error("failed to open run log", "path", cfg.LogDB, "error", err)
			return 1
		}
		defer store.Close()
		logger.Info("run log opened", "path", cfg.LogDB, "run_id", store.RunID())
		recorder = store
	}

	logger.Info("tidyherd starting", "version", version, "root", cfg.Root,
		"tool", cfg.Tool, "jobs", cfg.Jobs)

	d := dispatch.New(dispatch.Config{
		Root:       cfg.Root,
		BuildDir:   cfg.BuildDir,
		Tool:       cfg.Tool,
		Checks:     cfg.Checks,
		Fix:        cfg.Fix,
		Jobs:       cfg.Jobs,
		Excludes:   cfg.Excludes,
		Extensions: cfg.Extensions,
	}, override.NewTable(cfg.Overrides), report.NewPrinter(os.Stdout, os.Stderr), recorder)

	if err := d.Run(ctx); err != nil {
		logger.Error("dispatch failed", "error", err)
		return 1
	}
	return 0
}

func runDoctor(args []string) int {
	f, err := parseTargetFlags("doctor", args, true)
	if err != nil {
		return 1
	}

	cfg, err := buildConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	result := doctor.Check(cfg)
	if f.jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to format report: %v\n", err)
			return 1
		}
		fmt.Println(out)
	} else {
		fmt.Print(doctor.FormatHuman(result))
	}

	if !result.Valid {
		return 1
	}
	return 0
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tidyherd config <check|lock> [--config FILE]")
		return 1
	}

	action := args[0]
	actionArgs := args[1:]

	fs := flag.NewFlagSet("config "+action, flag.ContinueOnError)
	configPath := fs.String("config", "tidyherd.yaml", "Path to configuration file")
	if err := fs.Parse(actionArgs); err != nil {
		return 1
	}

	switch action {
	case "check":
		if _, err := config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Config invalid: %v\n", err)
			return 1
		}
		if err := config.VerifyChecksums(*configPath); err != nil {
			if errors.Is(err, config.ErrNoChecksums) {
				fmt.Printf("Config valid; %v (run 'tidyherd config lock')\n", err)
				return 0
			}
			fmt.Fprintf(os.Stderr, "Integrity check failed: %v\n", err)
			return 1
		}
		fmt.Println("Config valid; integrity verified.")
		return 0
	case "lock":
		if _, err := config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Config invalid: %v\n", err)
			return 1
		}
		manifestPath, err := config.GenerateChecksums(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write checksums: %v\n", err)
			return 1
		}
		fmt.Printf("Wrote %s\n", manifestPath)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}
