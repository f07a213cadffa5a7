package severity

import (
	"fmt"
	"strings"
)

// buildPrompt renders the batch into a single instruction. The rules push
// the model to grade the underlying conduct: a trivial matter written in
// legalistic prose must still come back LOW.
func buildPrompt(reports []ReportForEstimate) string {
	var descriptions strings.Builder
	for i, r := range reports {
		if i > 0 {
			descriptions.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&descriptions, "[%d] %s", i+1, r.Description)
	}

	return fmt.Sprintf(`You are an assistant for managing whistleblowing reports.

Assess the REAL severity of the reported conduct, not the tone or language used. A report written in formal or "legal" style about a trivial matter must be LOW.

Rules:
- Judge WHAT was done (substance), not how it is written. E.g. theft of coffee pods or office supplies = LOW even when described with terms like "repeated and systematic violation" or "concealment".
- LOW: minor violations, informational requests, mild inconveniences, trivial matters (unauthorized consumption of office food or stationery, minor interpersonal tension).
- MEDIUM: moderate procedural irregularities, missing documentation, significant delays.
- HIGH: serious violations, possible offenses, harassment, discrimination, fraud of some magnitude.
- CRITICAL: serious crimes (corruption, substantial embezzlement, threats, danger to people), systemic fraud, safety violations.

Do NOT raise the severity just because the text uses formal or legal language.

Reply ONLY with a JSON array of strings, in the same order as the reports (1 = first element, 2 = second, and so on).
Allowed values, exactly: "LOW", "MEDIUM", "HIGH", "CRITICAL".
Example: ["LOW", "CRITICAL", "MEDIUM"]

Reports:

%s`, descriptions.String())
}

//Personal.AI order the ending
