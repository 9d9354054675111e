package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kotoba/internal/models"
)

func sampleResponse() *models.LookupResponse {
	return &models.LookupResponse{
		Query:     "hap",
		Language:  "en",
		QueryTime: 3,
		Total:     2,
		Results: []models.WordResult{
			{
				Word:        "happy",
				POS:         models.Adjective,
				Definitions: []string{"feeling joy"},
				Examples:    []string{"a happy smile"},
				Synonyms:    []string{"glad"},
				Antonyms:    []string{"sad"},
				MatchScore:  28,
			},
			{
				Word:        "happy hour",
				POS:         models.Noun,
				Definitions: []string{strings.Repeat("a long definition ", 10)},
				Examples:    []string{},
				Synonyms:    []string{},
				Antonyms:    []string{},
				MatchScore:  20,
			},
		},
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{" compact ", OutputCompact, false},
		{"xlsx", OutputXLSX, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteLookupResults_JSON(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteLookupResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteLookupResults(json): %v", err)
	}
	var decoded models.LookupResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "hap" || decoded.QueryTime != 3 || len(decoded.Results) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Results[0].MatchScore != 28 || decoded.Results[0].Synonyms[0] != "glad" {
		t.Errorf("decoded first result = %+v", decoded.Results[0])
	}
}

func TestWriteLookupResults_Text(t *testing.T) {
	response := sampleResponse()
	response.Suggestions = []string{"happy", "harpy"}
	var buf bytes.Buffer
	if err := WriteLookupResults(&buf, response, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`Found 2 results for "hap" (en) in 3ms`,
		"Did you mean: happy, harpy?",
		"1. [hap]py (adjective)  score 28",
		"   feeling joy",
		`   e.g. "a happy smile"`,
		"   synonyms: glad",
		"   antonyms: sad",
		"2. [hap]py hour (noun)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q\n%s", want, out)
		}
	}
	if strings.Count(out, "synonyms:") != 1 {
		t.Error("empty synonym lists should be omitted")
	}
}

func TestWriteLookupResults_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLookupResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	if lines[0] != "happy\ta\tfeeling joy" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "...") || len(strings.Split(lines[1], "\t")[2]) != 83 {
		t.Errorf("long definitions should be truncated: %q", lines[1])
	}
}

func TestWriteLookupResults_XLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLookupResults(&buf, sampleResponse(), OutputXLSX); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2", len(rows))
	}
	if rows[0][0] != "Word" || rows[0][6] != "Score" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "happy" || rows[1][1] != "adjective" || rows[1][4] != "glad" || rows[1][6] != "28" {
		t.Errorf("row 1 = %v", rows[1])
	}
}
