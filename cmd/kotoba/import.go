package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosuri/uiprogress"

	"github.com/hyperjump/kotoba/internal/lexicon"
	"github.com/hyperjump/kotoba/internal/lmf"
)

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	prefix := fs.String("prefix", "", "id prefix to strip from synsets and senses, e.g. oewn-")
	out := fs.String("out", "", "output path (.json, .yaml or .db); default is the input name with .json")
	examples := fs.Int("examples", lmf.DefaultMaxExamples, "examples kept per synset")
	maxSpaces := fs.Int("max-spaces", lmf.DefaultMaxLemmaSpaces, "skip lemmas with more spaces than this")
	quiet := fs.Bool("quiet", false, "do not render a progress bar")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kotoba import [flags] <lmf.xml>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	input := fs.Arg(0)
	output := *out
	if output == "" {
		output = importOutputPath(input)
	}

	opts := lmf.Options{
		IDPrefix:       *prefix,
		MaxExamples:    *examples,
		MaxLemmaSpaces: *maxSpaces,
	}
	var bar *uiprogress.Bar
	if !*quiet {
		uiprogress.Start()
		bar = uiprogress.AddBar(100)
		bar.AppendCompleted()
		bar.PrependElapsed()
		opts.Progress = func(p lmf.Progress) {
			_ = bar.Set(progressPercent(p))
		}
	}

	ctx := context.Background()
	result, err := lmf.ConvertFile(ctx, input, opts)
	if bar != nil {
		uiprogress.Stop()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	if err := lexicon.WriteFile(ctx, output, result.Lexicon); err != nil {
		fmt.Fprintf(os.Stderr, "Write failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d synsets and %d entries (%d skipped) into %s\n",
		result.Synsets, result.Entries, result.Skipped, output)
	fmt.Printf("Parts of speech: %s\n", strings.Join(result.POSTags, " "))
}

// importOutputPath replaces the input extension with .json.
func importOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
}

// progressPercent converts a byte offset to a 0-100 bar value.
func progressPercent(p lmf.Progress) int {
	if p.Size <= 0 {
		return 0
	}
	pct := int(p.Offset * 100 / p.Size)
	if pct > 100 {
		pct = 100
	}
	return pct
}
