// Package main is the kotoba CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/config"
	"github.com/hyperjump/kotoba/internal/registry"
	"github.com/hyperjump/kotoba/internal/server"
	"github.com/hyperjump/kotoba/internal/watcher"
	"github.com/hyperjump/kotoba/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotoba/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory is preferred if present, and a missing default file falls back
// to KOTOBA_* environment variables. Returns the config and the path actually
// loaded ("" when built from the environment).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg, err := config.FromEnv()
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "import":
		runImport()
	case "repl":
		runRepl()
	case "languages":
		runLanguages()
	case "version", "--version", "-v":
		fmt.Printf("kotoba version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (loads, swaps, requests, file events)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	langs, err := cfg.ResolveLanguages()
	if err != nil {
		logger.Fatal("Failed to resolve languages", zap.Error(err))
	}
	reg := registry.New(registry.WithLogger(logger))
	if err := reg.InitializeAll(context.Background(), langs); err != nil {
		// Languages that failed stay unregistered; the rest are served.
		logger.Error("some languages failed to load", zap.Error(err))
	}
	logger.Info("languages loaded", zap.Strings("languages", reg.Languages()))

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()

	var watchSvc *watcher.Watcher
	var watchIface server.WatchService
	if cfg.Watch.Enabled {
		watchSvc = watcher.NewWatcher(
			func(code, path string) {
				swapped, err := reg.Refresh(watchCtx, code, path)
				if err != nil {
					logger.Warn("lexicon refresh failed", zap.String("language", code), zap.String("path", path), zap.Error(err))
					return
				}
				logger.Info("lexicon changed", zap.String("language", code), zap.Bool("swapped", swapped))
			},
			watcher.WithLogger(logger),
			watcher.WithDebounce(cfg.Watch.Debounce()),
		)
		for _, l := range langs {
			if err := watchSvc.Add(l.Code, l.Path); err != nil {
				logger.Warn("failed to watch lexicon", zap.String("language", l.Code), zap.Error(err))
			}
		}
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
		watchIface = watchSvc
	}

	srv := server.NewServer(reg, cfg, logger, watchIface)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printUsage() {
	fmt.Println(`kotoba - Fuzzy dictionary lookup over WordNet lexicons

Usage:
  kotoba server [flags]            Start the HTTP server
  kotoba search [flags] <query>    Look up a word
  kotoba import [flags] <lmf.xml>  Convert a WordNet LMF file into a lexicon
  kotoba repl [flags]              Interactive lookup with completion
  kotoba languages [flags]         List configured languages
  kotoba version                   Show version
  kotoba help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotoba/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path
  --server string    Server URL; empty (default) loads the lexicon directly
  --lang string      Language code (default: en)
  --limit int        Maximum number of results (default from config, or 10)
  --output string    Output format: text, compact, json or xlsx (default: text)
  --file string      Write output to a file instead of stdout (required for xlsx)

Import Flags:
  --prefix string    Id prefix to strip, e.g. oewn-
  --out string       Output path; .json, .yaml or .db (default: <input>.json)
  --examples int     Examples kept per synset (default: 2)
  --max-spaces int   Skip lemmas with more spaces than this (default: 2)

Repl Flags:
  --config string    Config file path
  --lang string      Starting language (default: en)

Examples:
  kotoba server
  kotoba search happy
  kotoba search --lang lv --limit 5 laim
  kotoba search --output json "ice cream"
  kotoba search --output xlsx --file happy.xlsx happy
  kotoba import --prefix oewn- --out en_wordnet.json english-wordnet-2024.xml
  kotoba repl --lang en
  kotoba languages`)
}
