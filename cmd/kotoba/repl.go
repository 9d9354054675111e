package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/registry"
	"github.com/hyperjump/kotoba/internal/repl"
	"github.com/hyperjump/kotoba/pkg/utils"
)

func runRepl() {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	lang := fs.String("lang", defaultLanguage, "starting language")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// The prompt owns the terminal, so logging stays off unless debug is set.
	logger := zap.NewNop()
	if cfg.Debug {
		if l, err := utils.NewLogger(true); err == nil {
			logger = l
		}
	}
	defer logger.Sync()

	langs, err := cfg.ResolveLanguages()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve languages: %v\n", err)
		os.Exit(1)
	}
	reg := registry.New(registry.WithLogger(logger))
	if err := reg.InitializeAll(context.Background(), langs); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if _, ok := reg.Engine(*lang); !ok {
		fmt.Fprintf(os.Stderr, "Language %q is not loaded (loaded: %v)\n", *lang, reg.Languages())
		os.Exit(1)
	}

	session := repl.NewSession(reg, *lang,
		repl.WithLimit(cfg.Search.DefaultLimit),
		repl.WithSpelling(cfg.Search.SuggestMaxDistance, cfg.Search.Suggestions),
		repl.WithLogger(logger),
	)
	if err := session.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "repl: %v\n", err)
		os.Exit(1)
	}
}
