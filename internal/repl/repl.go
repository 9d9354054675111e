// Package repl runs an interactive lookup prompt over the loaded languages.
package repl

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/cli"
	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/registry"
	"github.com/hyperjump/kotoba/internal/spell"
)

const (
	// completionThreshold is the number of characters typed before words are suggested.
	completionThreshold = 2

	maxCompletions = 12

	// commandPrefix marks session commands.
	commandPrefix = ":"
)

var commands = []prompt.Suggest{
	{Text: ":lang", Description: "switch language"},
	{Text: ":langs", Description: "list loaded languages"},
	{Text: ":limit", Description: "set result limit"},
	{Text: ":format", Description: "set output format"},
	{Text: ":help", Description: "show commands"},
	{Text: "quit", Description: "leave the prompt"},
}

// Session holds the interactive state: current language, limit and format.
type Session struct {
	registry *registry.Registry
	logger   *zap.Logger
	out      io.Writer

	language string
	limit    int
	format   cli.OutputFormat

	maxDistance    int
	maxSuggestions int

	// per-engine caches, keyed by engine generation
	generation  string
	suggestions []prompt.Suggest
	checker     *spell.SpellChecker
}

// Option configures a Session.
type Option func(*Session)

// WithOutput sets where results are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

// WithLimit sets the initial result limit.
func WithLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithFormat sets the initial output format.
func WithFormat(f cli.OutputFormat) Option {
	return func(s *Session) { s.format = f }
}

// WithSpelling configures "did you mean" suggestions for empty results.
func WithSpelling(maxDistance, maxSuggestions int) Option {
	return func(s *Session) {
		s.maxDistance = maxDistance
		s.maxSuggestions = maxSuggestions
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a session that starts in language.
func NewSession(reg *registry.Registry, language string, opts ...Option) *Session {
	s := &Session{
		registry:       reg,
		logger:         zap.NewNop(),
		out:            os.Stdout,
		language:       language,
		limit:          10,
		format:         cli.OutputText,
		maxDistance:    2,
		maxSuggestions: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Language returns the current language code.
func (s *Session) Language() string { return s.language }

// Run reads lines until the user quits.
func (s *Session) Run() error {
	fmt.Fprintf(s.out, "kotoba: type a word to look it up, %shelp for commands, quit to leave\n", commandPrefix)
	history := []string{}
	for {
		in := prompt.Input("", s.Complete,
			prompt.OptionTitle("kotoba"),
			prompt.OptionLivePrefix(func() (string, bool) { return s.language + "> ", true }),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionMaxSuggestion(maxCompletions),
			prompt.OptionHistory(history),
		)
		if strings.TrimSpace(in) != "" {
			history = append(history, in)
		}
		quit, err := s.Execute(in)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Execute handles one input line. It reports whether the session should end.
func (s *Session) Execute(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if line == "quit" || line == "exit" {
		return true, nil
	}
	if !strings.HasPrefix(line, commandPrefix) {
		return false, s.lookup(line)
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":lang":
		if arg == "" {
			fmt.Fprintf(s.out, "language: %s\n", s.language)
			return false, nil
		}
		if _, ok := s.registry.Engine(arg); !ok {
			return false, fmt.Errorf("language %q is not loaded", arg)
		}
		s.language = arg
		fmt.Fprintf(s.out, "language set to %s\n", arg)
	case ":langs":
		for _, st := range s.registry.Stats() {
			marker := " "
			if st.Code == s.language {
				marker = "*"
			}
			fmt.Fprintf(s.out, "%s %s\t%d words\t%d synsets\n", marker, st.Code, st.Words, st.Synsets)
		}
	case ":limit":
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return false, fmt.Errorf("limit must be a positive integer")
		}
		s.limit = n
		fmt.Fprintf(s.out, "limit set to %d\n", n)
	case ":format":
		f, err := cli.ParseOutputFormat(arg)
		if err != nil {
			return false, err
		}
		if f == cli.OutputXLSX {
			return false, fmt.Errorf("xlsx output is not available in the prompt")
		}
		s.format = f
		fmt.Fprintf(s.out, "format set to %s\n", f)
	case ":help":
		for _, c := range commands {
			fmt.Fprintf(s.out, "  %-8s %s\n", c.Text, c.Description)
		}
	default:
		return false, fmt.Errorf("unknown command %s", name)
	}
	return false, nil
}

func (s *Session) lookup(text string) error {
	start := time.Now()
	results := s.registry.Query(text, s.language, s.limit)
	response := &models.LookupResponse{
		Results:  results,
		Total:    len(results),
		Query:    text,
		Language: s.language,
	}
	if len(results) == 0 {
		s.refresh()
		if s.checker != nil {
			response.Suggestions = s.checker.Terms(text)
		}
	}
	response.QueryTime = time.Since(start).Milliseconds()
	s.logger.Debug("lookup", zap.String("query", text), zap.String("language", s.language), zap.Int("results", len(results)))
	return cli.WriteLookupResults(s.out, response, s.format)
}

// Complete suggests commands, language codes or headwords for the text before the cursor.
func (s *Session) Complete(in prompt.Document) []prompt.Suggest {
	before := in.TextBeforeCursor()
	if before == "" {
		return []prompt.Suggest{}
	}
	if strings.HasPrefix(before, commandPrefix) {
		name, arg, hasArg := strings.Cut(before, " ")
		if !hasArg {
			return prompt.FilterHasPrefix(commands, name, true)
		}
		if name == ":lang" {
			langs := s.registry.Languages()
			out := make([]prompt.Suggest, 0, len(langs))
			for _, code := range langs {
				out = append(out, prompt.Suggest{Text: code})
			}
			return prompt.FilterHasPrefix(out, arg, true)
		}
		return []prompt.Suggest{}
	}
	if len([]rune(before)) < completionThreshold {
		return []prompt.Suggest{}
	}

	s.refresh()
	out := prompt.FilterHasPrefix(s.suggestions, before, true)
	if len(out) > maxCompletions {
		out = out[:maxCompletions]
	}
	return out
}

// refresh rebuilds the per-engine caches when the current language's engine changed.
func (s *Session) refresh() {
	engine, ok := s.registry.Engine(s.language)
	if !ok {
		s.generation = ""
		s.suggestions = nil
		s.checker = nil
		return
	}
	gen := engine.Stats().Generation
	if gen == s.generation {
		return
	}
	words := engine.Words()
	suggestions := make([]prompt.Suggest, len(words))
	for i, w := range words {
		suggestions[i] = prompt.Suggest{Text: w}
	}
	s.generation = gen
	s.suggestions = suggestions
	s.checker = spell.NewSpellChecker(engine,
		spell.WithMaxDistance(s.maxDistance),
		spell.WithMaxSuggestions(s.maxSuggestions))
}
