package genai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Matches unquoted object keys such as `{title:` or `, orderIndex:`.
var bareKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// Ingest parses the model's raw text reply into a validated
// GeneratedProject. It is a pure function: two-phase parse (direct, then
// brace extraction with a bare-key repair heuristic), then all-or-nothing
// semantic validation. Inputs the heuristic cannot salvage fail closed.
func Ingest(rawText string) (*GeneratedProject, error) {
	var project GeneratedProject

	// Phase 1: the reply is a single JSON value.
	if err := json.Unmarshal([]byte(rawText), &project); err != nil {
		// Phase 2: recover the largest brace-delimited object from
		// surrounding prose or code fences.
		candidate, ok := extractObject(rawText)
		if !ok {
			return nil, newError(KindResponseFormat, "no JSON object found in reply")
		}
		project = GeneratedProject{}
		if err := json.Unmarshal([]byte(candidate), &project); err != nil {
			repaired := bareKeyRe.ReplaceAllString(candidate, `$1"$2":`)
			project = GeneratedProject{}
			if err := json.Unmarshal([]byte(repaired), &project); err != nil {
				return nil, newError(KindResponseFormat, truncate(err.Error(), diagnosticLimit))
			}
		}
	}

	if reasons := project.validate(); len(reasons) > 0 {
		return nil, newError(KindResponseValidation, strings.Join(reasons, "; "))
	}

	return &project, nil
}

// extractObject returns the greedy first-'{' to last-'}' substring.
func extractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
