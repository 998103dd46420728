package prompts

import (
	"fmt"
	"strings"

	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

// BuildRuleMappingPrompt creates the prompt for the global-rule mapping
// pre-pass: given all table schemas and the global rules text, the model
// partitions rules by the tables they apply to.
func BuildRuleMappingPrompt(tables []models.TableInput, globalRules string) string {
	var sb strings.Builder

	sb.WriteString("# Business Rule Mapping\n\n")
	sb.WriteString("Decide which of the global business rules below apply to which tables. ")
	sb.WriteString("A rule applies to a table when the rule's subject matter concerns that table's columns or rows.\n\n")

	sb.WriteString("## Tables\n\n")
	for _, t := range tables {
		sb.WriteString(fmt.Sprintf("### %s\n\n", t.Name))
		sb.WriteString(orSection(t.Schema))
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Global Rules\n\n")
	sb.WriteString(orSection(globalRules))
	sb.WriteString("\n\n")

	sb.WriteString("## Response Format\n\n")
	sb.WriteString("Respond with ONLY a JSON object in exactly this shape. ")
	sb.WriteString("Quote each rule's text verbatim; `tables` entries must be names from the Tables section:\n\n")
	sb.WriteString("```json\n")
	sb.WriteString(`{
  "mappings": [
    {"rule": "verbatim rule text", "tables": ["table_name_1", "table_name_2"]}
  ]
}
`)
	sb.WriteString("```\n\n")
	sb.WriteString("A rule that applies to no table gets an empty `tables` array. Return ONLY the JSON.\n")

	return sb.String()
}

// RuleMappingSystemMessage returns the system message for the rule-mapping
// pre-pass.
func RuleMappingSystemMessage() string {
	return `You are a database governance analyst. You map business rules to the database tables they govern and respond with valid JSON only.`
}
