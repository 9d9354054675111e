// Package cli renders lookup results for the kotoba command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/search"
	"github.com/hyperjump/kotoba/pkg/utils"
)

// OutputFormat is the format for lookup output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputXLSX is an Excel workbook with one row per result.
	OutputXLSX OutputFormat = "xlsx"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON, OutputXLSX:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact, json or xlsx)", s)
	}
}

// WriteLookupResults writes response to w in the given format.
func WriteLookupResults(w io.Writer, response *models.LookupResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(response)
	case OutputCompact:
		return writeCompact(w, response)
	case OutputXLSX:
		return writeXLSX(w, response)
	default:
		return writeText(w, response)
	}
}

func writeText(w io.Writer, response *models.LookupResponse) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\nFound %d results for %q (%s) in %dms\n", response.Total, response.Query, response.Language, response.QueryTime)
	if len(response.Suggestions) > 0 {
		fmt.Fprintf(&b, "Did you mean: %s?\n", strings.Join(response.Suggestions, ", "))
	}
	for i, r := range response.Results {
		fmt.Fprintf(&b, "\n%d. %s (%s)  score %d\n", i+1,
			search.Highlight(r.Word, response.Query, "[", "]"), r.POS.LongName(), r.MatchScore)
		for _, d := range r.Definitions {
			fmt.Fprintf(&b, "   %s\n", d)
		}
		for _, ex := range r.Examples {
			fmt.Fprintf(&b, "   e.g. %q\n", ex)
		}
		if len(r.Synonyms) > 0 {
			fmt.Fprintf(&b, "   synonyms: %s\n", strings.Join(r.Synonyms, ", "))
		}
		if len(r.Antonyms) > 0 {
			fmt.Fprintf(&b, "   antonyms: %s\n", strings.Join(r.Antonyms, ", "))
		}
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCompact(w io.Writer, response *models.LookupResponse) error {
	var b strings.Builder
	for _, r := range response.Results {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", r.Word, r.POS, utils.Truncate(strings.Join(r.Definitions, "; "), 80))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

const resultsSheet = "Results"

var xlsxHeader = []interface{}{"Word", "POS", "Definitions", "Examples", "Synonyms", "Antonyms", "Score"}

func writeXLSX(w io.Writer, response *models.LookupResponse) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := xlsxHeader
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range response.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.Word,
			r.POS.LongName(),
			strings.Join(r.Definitions, "\n"),
			strings.Join(r.Examples, "\n"),
			strings.Join(r.Synonyms, ", "),
			strings.Join(r.Antonyms, ", "),
			r.MatchScore,
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
