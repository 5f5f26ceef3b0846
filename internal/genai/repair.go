package genai

import (
	"encoding/json"
	"strings"

	"github.com/easyfitness/easyfitness-data/internal/fault"
)

const parseExcerptLen = 300

// parsePlanJSON parses model output into v, applying the repair ladder for
// truncated output:
//
//  1. strip markdown code fences if present;
//  2. if the text does not end with '}', count the '{'/'}' imbalance and
//     append the missing closing braces;
//  3. if parsing still fails, scan backward for the last '}' that yields a
//     parseable prefix and use it, reporting partial=true;
//  4. otherwise fail with a PARSE_ERROR carrying a truncated excerpt.
//
// Step 2 is a best-effort repair for truncated output, not a general JSON
// fixer: it only ever appends closing braces.
func parsePlanJSON(text string, v any) (partial bool, err error) {
	cleaned := stripFences(text)

	if json.Unmarshal([]byte(cleaned), v) == nil {
		return false, nil
	}

	repaired := closeBraces(cleaned)
	if repaired != cleaned && json.Unmarshal([]byte(repaired), v) == nil {
		return false, nil
	}

	if prefix, ok := lastValidPrefix(cleaned, v); ok {
		_ = prefix
		return true, nil
	}

	return false, fault.Newf(fault.CodeParse, "response is not valid JSON: %s", excerpt(cleaned))
}

// stripFences removes a surrounding markdown code fence (``` or ```json)
// when the model ignores JSON mode and wraps its output anyway.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	if idx := strings.LastIndex(t, "```"); idx >= 0 {
		t = t[:idx]
	}
	return strings.TrimSpace(t)
}

// closeBraces appends missing '}' characters when the text was cut off
// mid-object. Returns the input unchanged when it already ends with '}' or
// the braces balance.
func closeBraces(s string) string {
	t := strings.TrimSpace(s)
	if t == "" || strings.HasSuffix(t, "}") {
		return t
	}

	depth := 0
	inString := false
	escaped := false
	for _, r := range t {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
			}
		}
	}
	if depth <= 0 {
		return t
	}

	// A truncated string value needs its quote closed before the braces.
	if inString {
		t += `"`
	}
	return t + strings.Repeat("}", depth)
}

// lastValidPrefix scans backward from the end for a '}' that yields a
// parseable prefix object. Returns the prefix and whether one was found;
// on success v holds the decoded prefix.
func lastValidPrefix(s string, v any) (string, bool) {
	t := strings.TrimSpace(s)
	for i := len(t) - 1; i >= 0; i-- {
		if t[i] != '}' {
			continue
		}
		candidate := t[:i+1]
		if json.Unmarshal([]byte(candidate), v) == nil {
			return candidate, true
		}
	}
	return "", false
}

// excerpt returns a bounded slice of raw model output for diagnostics.
func excerpt(s string) string {
	if len(s) <= parseExcerptLen {
		return s
	}
	return s[:parseExcerptLen] + "..."
}
