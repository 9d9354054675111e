package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/cli"
	"github.com/hyperjump/kotoba/internal/config"
	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/registry"
	"github.com/hyperjump/kotoba/internal/spell"
	"github.com/hyperjump/kotoba/pkg/utils"
)

const defaultLanguage = "en"

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotoba search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Phrases work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Matching is fuzzy: the query's characters must appear in order in the word.
Exact matches come first, then single words before phrases, then by score.
When nothing matches, close spellings are suggested.

Examples:
  kotoba search happy
  kotoba search ice cream                 # same as "ice cream"
  kotoba search --lang lv laim
  kotoba search --output xlsx --file out.xlsx happy
`)
}

// buildSearchQuery joins all positional args with spaces so phrases work the
// same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = load the lexicon directly)")
	lang := fs.String("lang", defaultLanguage, "language code")
	limit := fs.Int("limit", 0, "maximum number of results (0 = config default)")
	outputFormat := fs.String("output", "text", "output format: text, compact, json or xlsx")
	outFile := fs.String("file", "", "write output to this file instead of stdout")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if format == cli.OutputXLSX && *outFile == "" {
		fmt.Fprintln(os.Stderr, "xlsx output requires --file")
		os.Exit(1)
	}

	query := &models.LookupQuery{Query: queryStr, Language: *lang, Limit: *limit}

	var response *models.LookupResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, query)
	} else {
		var cfg *config.Config
		cfg, _, err = loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, logErr := utils.NewLogger(cfg.Debug)
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", logErr)
			os.Exit(1)
		}
		defer logger.Sync()
		response, err = lookupLocal(context.Background(), cfg, query, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}

	out := io.Writer(os.Stdout)
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *outFile, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := cli.WriteLookupResults(out, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// lookupLocal loads only the requested language and runs the lookup in process.
func lookupLocal(ctx context.Context, cfg *config.Config, query *models.LookupQuery, logger *zap.Logger) (*models.LookupResponse, error) {
	if err := query.Normalize(cfg.Search.DefaultLimit, cfg.Search.MaxLimit); err != nil {
		return nil, err
	}
	langs, err := cfg.ResolveLanguages()
	if err != nil {
		return nil, err
	}
	lang, ok := findLanguage(langs, query.Language)
	if !ok {
		return nil, fmt.Errorf("language %q is not configured", query.Language)
	}

	reg := registry.New(registry.WithLogger(logger))
	if err := reg.Initialize(ctx, lang.Code, lang.Path); err != nil {
		return nil, err
	}

	start := time.Now()
	results := reg.Query(query.Query, query.Language, query.Limit)
	response := &models.LookupResponse{
		Results:  results,
		Total:    len(results),
		Query:    query.Query,
		Language: query.Language,
	}
	if len(results) == 0 && query.Query != "" {
		if engine, ok := reg.Engine(query.Language); ok {
			checker := spell.NewSpellChecker(engine,
				spell.WithMaxDistance(cfg.Search.SuggestMaxDistance),
				spell.WithMaxSuggestions(cfg.Search.Suggestions))
			response.Suggestions = checker.Terms(query.Query)
		}
	}
	response.QueryTime = time.Since(start).Milliseconds()
	return response, nil
}

func findLanguage(langs []config.LanguageConfig, code string) (config.LanguageConfig, bool) {
	for _, l := range langs {
		if l.Code == code {
			return l, true
		}
	}
	return config.LanguageConfig{}, false
}

func searchViaHTTP(serverURL string, query *models.LookupQuery) (*models.LookupResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimSuffix(serverURL, "/")+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var response models.LookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}
