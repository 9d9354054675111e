package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/hyperjump/kotoba/internal/registry"
)

func runLanguages() {
	fs := flag.NewFlagSet("languages", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL; when set, lists loaded languages with stats")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		stats, err := languagesViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Languages failed: %v\n", err)
			os.Exit(1)
		}
		for _, s := range stats {
			fmt.Printf("%-6s %8d words %8d synsets  %s\n", s.Code, s.Words, s.Synsets, s.Path)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	langs, err := cfg.ResolveLanguages()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve languages: %v\n", err)
		os.Exit(1)
	}
	if len(langs) == 0 {
		fmt.Println("No languages configured.")
		return
	}
	for _, l := range langs {
		fmt.Printf("%-6s %s\n", l.Code, l.Path)
	}
}

func languagesViaHTTP(serverURL string) ([]registry.LanguageStats, error) {
	resp, err := http.Get(strings.TrimSuffix(serverURL, "/") + "/api/v1/languages")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out struct {
		Languages []registry.LanguageStats `json:"languages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Languages, nil
}
