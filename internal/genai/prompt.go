package genai

import (
	"fmt"
	"strings"
)

// BuildPrompt turns a validated GenerationInput into the single instruction
// sent to the model. It is pure: identical input always yields an identical
// string, so generation is reproducible against a stub model.
func BuildPrompt(in GenerationInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a project planning assistant. Create a project plan for the following description: %q\n\n", in.Description)
	fmt.Fprintf(&b, "The plan must contain exactly %d tasks.\n", in.NumTasks)
	fmt.Fprintf(&b, "All dates must fall between %s and %s inclusive.\n\n", in.StartDate, in.EndDate)

	b.WriteString("Respond with a single JSON object of exactly this shape:\n")
	b.WriteString("{\n")
	b.WriteString("  \"title\": string,\n")
	b.WriteString("  \"description\": string,\n")
	b.WriteString("  \"status\": one of \"not_started\", \"in_progress\", \"completed\", \"on_hold\",\n")
	b.WriteString("  \"priority\": one of \"low\", \"medium\", \"high\",\n")
	b.WriteString("  \"startDate\": \"YYYY-MM-DD\",\n")
	b.WriteString("  \"endDate\": \"YYYY-MM-DD\",\n")
	b.WriteString("  \"tasks\": [\n")
	b.WriteString("    {\n")
	b.WriteString("      \"title\": string,\n")
	b.WriteString("      \"description\": string,\n")
	b.WriteString("      \"status\": one of \"todo\", \"in_progress\", \"completed\", \"blocked\",\n")
	b.WriteString("      \"priority\": one of \"low\", \"medium\", \"high\",\n")
	b.WriteString("      \"startDate\": \"YYYY-MM-DD\",\n")
	b.WriteString("      \"endDate\": \"YYYY-MM-DD\",\n")
	b.WriteString("      \"completed\": boolean,\n")
	b.WriteString("      \"orderIndex\": non-negative integer,\n")
	b.WriteString("      \"parentId\": null\n")
	b.WriteString("    }\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n\n")
	b.WriteString("Output JSON only, no prose, no code fences.")

	return b.String()
}
