package genai

import (
	"strings"
	"testing"

	"github.com/easyfitness/easyfitness-data/internal/fault"
	"github.com/easyfitness/easyfitness-data/internal/plan"
)

func TestParsePlanJSONValid(t *testing.T) {
	var p plan.WorkoutPlan
	partial, err := parsePlanJSON(`{"plan_name":"Basic","days":[{"day_number":1,"exercises":[]}]}`, &p)
	if err != nil {
		t.Fatalf("parsePlanJSON: %v", err)
	}
	if partial {
		t.Error("valid JSON reported as partial")
	}
	if p.PlanName != "Basic" || len(p.Days) != 1 {
		t.Errorf("decoded plan = %+v", p)
	}
}

func TestParsePlanJSONStripsCodeFences(t *testing.T) {
	cases := []string{
		"```json\n{\"plan_name\":\"Fenced\",\"days\":[]}\n```",
		"```\n{\"plan_name\":\"Fenced\",\"days\":[]}\n```",
	}
	for _, text := range cases {
		var p plan.WorkoutPlan
		partial, err := parsePlanJSON(text, &p)
		if err != nil {
			t.Fatalf("parsePlanJSON(%q): %v", text, err)
		}
		if partial || p.PlanName != "Fenced" {
			t.Errorf("parsePlanJSON(%q) = %+v partial=%v", text, p, partial)
		}
	}
}

func TestParsePlanJSONClosesMissingBraces(t *testing.T) {
	// Truncated after a complete value with nested closing braces missing.
	text := `{"plan_name":"Cut","plan_description":"test","extra":{"a":{"b":1`

	var v map[string]any
	partial, err := parsePlanJSON(text, &v)
	if err != nil {
		t.Fatalf("parsePlanJSON: %v", err)
	}
	if partial {
		t.Error("brace-repaired JSON reported as partial")
	}
	if v["plan_name"] != "Cut" {
		t.Errorf("decoded = %v", v)
	}
}

func TestParsePlanJSONClosesTruncatedString(t *testing.T) {
	text := `{"plan_name":"Bulk","plan_description":"heavy compound lift`
	var v map[string]any
	partial, err := parsePlanJSON(text, &v)
	if err != nil {
		t.Fatalf("parsePlanJSON: %v", err)
	}
	if partial {
		t.Error("reported as partial")
	}
	if v["plan_name"] != "Bulk" {
		t.Errorf("decoded = %v", v)
	}
}

func TestParsePlanJSONIgnoresBracesInsideStrings(t *testing.T) {
	text := `{"plan_name":"Braces {inside} string","note":"}}}{","extra":{"a":1`
	var v map[string]any
	if _, err := parsePlanJSON(text, &v); err != nil {
		t.Fatalf("parsePlanJSON: %v", err)
	}
	if v["plan_name"] != "Braces {inside} string" {
		t.Errorf("decoded = %v", v)
	}
}

func TestParsePlanJSONLastValidPrefix(t *testing.T) {
	// Ends with '}' so brace counting is skipped, but trailing garbage
	// means only a backward prefix scan can recover it.
	text := `{"plan_name":"Prefix","days":[]} trailing garbage}`
	var p plan.WorkoutPlan
	partial, err := parsePlanJSON(text, &p)
	if err != nil {
		t.Fatalf("parsePlanJSON: %v", err)
	}
	if !partial {
		t.Error("prefix recovery must report partial=true")
	}
	if p.PlanName != "Prefix" {
		t.Errorf("decoded plan = %+v", p)
	}
}

func TestParsePlanJSONUnrepairable(t *testing.T) {
	long := "definitely not json " + strings.Repeat("x", 400)
	var p plan.WorkoutPlan
	_, err := parsePlanJSON(long, &p)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if fault.GetCode(err) != fault.CodeParse {
		t.Errorf("code = %q, want PARSE_ERROR", fault.GetCode(err))
	}
	// Excerpt is bounded.
	if len(err.Error()) > parseExcerptLen+120 {
		t.Errorf("error message not truncated: %d chars", len(err.Error()))
	}
	if !strings.Contains(err.Error(), "...") {
		t.Errorf("long input excerpt should be elided: %v", err)
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                    "{\"a\":1}",
		"```json\n{\"a\":1}\n```":      "{\"a\":1}",
		"```\n{\"a\":1}\n```":          "{\"a\":1}",
		"  ```json\n{\"a\":1}\n```   ": "{\"a\":1}",
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCloseBracesNoChangeWhenBalanced(t *testing.T) {
	in := `{"a":1}`
	if got := closeBraces(in); got != in {
		t.Errorf("closeBraces(%q) = %q, want unchanged", in, got)
	}
}

func TestCloseBracesAppendsExactlyMissingCount(t *testing.T) {
	in := `{"a":{"b":{"c":1`
	want := `{"a":{"b":{"c":1}}}`
	if got := closeBraces(in); got != want {
		t.Errorf("closeBraces(%q) = %q, want %q", in, got, want)
	}
}
