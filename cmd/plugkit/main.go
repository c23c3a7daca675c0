// Package main is the entry point for the plugkit host.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/plugkit/internal/config"
	"github.com/dshills/plugkit/internal/kernel"
	"github.com/dshills/plugkit/internal/plugin"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	cfg.PluginPaths = append(cfg.PluginPaths, opts.pluginPaths...)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	k := kernel.New(
		kernel.WithLogger(log),
		kernel.WithContextValues(cfg.Context),
	)

	loader := plugin.NewLoader(plugin.WithPaths(cfg.PluginPaths...))
	infos, err := loader.Discover()
	if err != nil {
		log.Error("plugin discovery failed", zap.Error(err))
		return 1
	}

	for _, info := range infos {
		if info.Err != nil {
			log.Warn("skipping plugin",
				zap.String("plugin", info.Name),
				zap.Error(info.Err),
			)
			continue
		}
		if cfg.IsDisabled(info.Name) {
			log.Debug("plugin disabled", zap.String("plugin", info.Name))
			continue
		}

		p, err := plugin.New(info.Manifest, plugin.WithLogger(log))
		if err != nil {
			log.Warn("invalid plugin",
				zap.String("plugin", info.Name),
				zap.Error(err),
			)
			continue
		}
		if err := k.Register(p); err != nil {
			log.Warn("failed to register plugin",
				zap.String("plugin", info.Name),
				zap.Error(err),
			)
		}
	}

	ctx := context.Background()
	if err := k.Init(ctx); err != nil {
		log.Error("kernel initialization failed", zap.Error(err))
		_ = k.Destroy(ctx)
		return 1
	}
	log.Info("kernel initialized", zap.Strings("plugins", k.List()))

	// Block until asked to stop, then tear everything down in reverse order.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	log.Info("shutting down")
	if err := k.Destroy(ctx); err != nil {
		log.Error("kernel teardown failed", zap.Error(err))
		return 1
	}
	return 0
}

type options struct {
	configPath  string
	logLevel    string
	pluginPaths []string
}

type pathList []string

func (p *pathList) String() string { return fmt.Sprint([]string(*p)) }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func parseFlags() options {
	var opts options
	var paths pathList
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.Var(&paths, "plugins", "Plugin search path (repeatable)")
	flag.Var(&paths, "p", "Plugin search path (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Plugkit - Lua plugin host\n\n")
		fmt.Fprintf(os.Stderr, "Usage: plugkit [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  plugkit -p ./plugins            Host plugins from a directory\n")
		fmt.Fprintf(os.Stderr, "  plugkit -c plugkit.toml         Run with a config file\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Plugkit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.pluginPaths = paths
	return opts
}

// newLogger builds a production zap logger at the given level.
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
