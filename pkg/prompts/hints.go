package prompts

import (
	"regexp"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

var columnTokenPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_]*`)

// relationshipHints returns columns of table whose names follow the
// conventional foreign-key pattern toward targetTable (e.g. `customer_id`
// toward `dbo.customers`). The hints are advisory text in the prompt; they
// nudge the model toward plausible targets without constraining it beyond
// the known-table allowlist. Matching is naive by design.
func relationshipHints(table models.TableInput, targetTable string) []string {
	base := targetTable
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[idx+1:]
	}
	singular := strings.ToLower(inflection.Singular(base))
	if singular == "" {
		return nil
	}

	candidates := map[string]struct{}{
		singular + "_id": {},
		singular + "id":  {},
	}

	seen := make(map[string]struct{})
	var hints []string
	for _, token := range columnTokenPattern.FindAllString(table.Schema, -1) {
		lower := strings.ToLower(token)
		if _, ok := candidates[lower]; !ok {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		hints = append(hints, token)
	}
	return hints
}
