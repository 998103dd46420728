package services

import (
	"fmt"
	"strings"

	"github.com/corazawaf/libinjection-go"

	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

// maxScanLines caps how many sample lines the injection scan inspects per
// table. Sample blobs are user-pasted and occasionally huge.
const maxScanLines = 200

// ScanSamplesForInjection runs a deterministic pre-check over a table's
// sample rows, flagging values that fingerprint as SQL injection payloads.
// Payload-looking data in production tables usually means an upstream input
// validation gap, which is a data-quality finding in its own right and one
// the LLM pass is not reliable at. The scan never calls out; its issues are
// appended to the table's LLM findings during the merge.
func ScanSamplesForInjection(table models.TableInput) []models.Issue {
	if strings.TrimSpace(table.Samples) == "" {
		return nil
	}

	var issues []models.Issue
	lines := strings.Split(table.Samples, "\n")
	if len(lines) > maxScanLines {
		lines = lines[:maxScanLines]
	}

	for n, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		isSQLi, fingerprint := libinjection.IsSQLi(line)
		if !isSQLi {
			continue
		}
		issues = append(issues, models.Issue{
			TableName: table.Name,
			Type:      "Suspicious Content",
			Description: fmt.Sprintf(
				"Sample row %d matches a SQL injection fingerprint (%s). Stored payload-like values usually indicate missing input validation upstream.",
				n+1, fingerprint),
			Severity:       models.SeverityMedium,
			PossibleCause:  "Application accepts raw user input without sanitization.",
			Impact:         "Data consumers re-using these values in dynamic SQL are exposed to injection.",
			Recommendation: "Audit the write path for this table and add input validation.",
		})
	}
	return issues
}
