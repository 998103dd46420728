// Package prompts builds the LLM prompts used by analysis passes.
package prompts

import (
	"fmt"
	"strings"

	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

// notProvided substitutes for empty metadata sections so the prompt stays
// well-formed; an empty block reads as a formatting mistake to the model.
const notProvided = "Not provided"

// orSection returns the text, or the explicit placeholder when empty.
func orSection(text string) string {
	if strings.TrimSpace(text) == "" {
		return notProvided
	}
	return text
}

// BuildTableAnalysisPrompt creates the per-table analysis prompt. The prompt
// is self-contained: it restricts findings to exactly one table, supplies
// only the rules applicable to that table, lists the other known tables as
// the only valid relationship targets, and pins the output contract the
// structured response must honor.
func BuildTableAnalysisPrompt(
	table models.TableInput,
	allTableNames []string,
	applicableRules string,
	history string,
) string {
	var sb strings.Builder

	sb.WriteString("# Table Data-Quality Analysis\n\n")
	sb.WriteString(fmt.Sprintf("Analyze the database table `%s` using the metadata below. ", table.Name))
	sb.WriteString("Report findings for THIS TABLE ONLY. Every issue you report must have ")
	sb.WriteString(fmt.Sprintf("`table_name` set to exactly `%s`.\n\n", table.Name))

	sb.WriteString("## Schema\n\n")
	sb.WriteString(orSection(table.Schema))
	sb.WriteString("\n\n## Column Statistics\n\n")
	sb.WriteString(orSection(table.Stats))
	sb.WriteString("\n\n## Sample Rows\n\n")
	sb.WriteString(orSection(table.Samples))
	sb.WriteString("\n\n## Business Rules (applicable to this table)\n\n")
	sb.WriteString(orSection(applicableRules))
	sb.WriteString("\n\n## Analysis History / Context\n\n")
	sb.WriteString(orSection(history))
	sb.WriteString("\n\n")

	sb.WriteString("## Known Tables\n\n")
	otherTables := otherTableNames(table.Name, allTableNames)
	if len(otherTables) == 0 {
		sb.WriteString("This is the only table in this analysis run. Do not infer any relationships.\n")
	} else {
		sb.WriteString("The ONLY valid relationship targets are the following tables. ")
		sb.WriteString("Never reference a table that is not in this list:\n")
		for _, name := range otherTables {
			sb.WriteString(fmt.Sprintf("- %s", name))
			if hints := relationshipHints(table, name); len(hints) > 0 {
				sb.WriteString(fmt.Sprintf(" (column naming suggests: %s)", strings.Join(hints, ", ")))
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Task\n\n")
	sb.WriteString("1. **Issues**: detect data-quality problems (nulls, outliers, format violations, duplicates, inconsistencies). ")
	sb.WriteString("When an issue stems from a business rule above, set its `type` to exactly `" + models.IssueTypeRuleViolation + "`.\n")
	sb.WriteString("2. **Rule effectiveness**: for each applicable rule, judge whether it is `Effective`, `Never Triggered`, or `Overly Broad` against the samples and statistics.\n")
	sb.WriteString("3. **Rule conflicts**: report contradictions between two or more rules (list at least 2 rules per conflict).\n")
	sb.WriteString("4. **Inferred relationships**: list likely foreign-key relationships from this table's columns to the known tables above.\n")
	sb.WriteString("5. **Hotspot score**: sum the weights of the issues you reported using exactly High=3, Medium=2, Low=1. ")
	sb.WriteString("Use this weighting and no other, so scores are comparable across tables.\n\n")

	sb.WriteString("## Response Format\n\n")
	sb.WriteString("Respond with ONLY a JSON object in exactly this shape:\n\n")
	sb.WriteString("```json\n")
	sb.WriteString(`{
  "table_name": "` + table.Name + `",
  "issues": [
    {
      "table_name": "` + table.Name + `",
      "column_name": "email",
      "type": "Format Violation",
      "description": "12% of sampled emails lack an @ sign.",
      "severity": "Medium",
      "possible_cause": "Free-text entry without validation.",
      "impact": "Bounced notifications.",
      "recommendation": "Add a CHECK constraint or application-side validation."
    }
  ],
  "rule_effectiveness": [
    {
      "rule": "email must be unique",
      "table_name": "` + table.Name + `",
      "status": "Effective",
      "reasoning": "Duplicates present in samples; rule would have caught them.",
      "recommendation": ""
    }
  ],
  "rule_conflicts": [
    {
      "conflicting_rules": ["rule text 1", "rule text 2"],
      "table_name": "` + table.Name + `",
      "description": "Rule 1 requires X while rule 2 forbids it.",
      "recommendation": "Reconcile thresholds."
    }
  ],
  "inferred_relationships": [
    {"to_table": "other_table_name", "on_column": "column_in_this_table"}
  ],
  "hotspot_score": 2
}
`)
	sb.WriteString("```\n\n")
	sb.WriteString("Field constraints: `severity` is one of `Low`, `Medium`, `High`. ")
	sb.WriteString("`status` is one of `Effective`, `Never Triggered`, `Overly Broad`. ")
	sb.WriteString("All arrays are required; use `[]` when you have nothing to report. ")
	sb.WriteString("`hotspot_score` is a non-negative integer. ")
	sb.WriteString("Return ONLY the JSON, no additional text.\n")

	return sb.String()
}

// TableAnalysisSystemMessage returns the system message for per-table
// analysis calls.
func TableAnalysisSystemMessage() string {
	return `You are a database data-quality analyst. You evaluate one table at a time against its schema, statistics, sample rows, and business rules, and respond with valid JSON only.`
}

// otherTableNames filters self out of the known-table list, preserving order.
func otherTableNames(self string, all []string) []string {
	others := make([]string, 0, len(all))
	for _, name := range all {
		if name != self {
			others = append(others, name)
		}
	}
	return others
}
