package llm

import (
	"fmt"
	"strings"

	"maintenance-backend/internal/plans"
)

// MinSafetyRisks is the number of risk entries the prompt asks for (NR-37).
const MinSafetyRisks = 4

const systemPrompt = "You are a senior offshore instrumentation engineer. Respond with JSON only. No markdown. Output must match the schema exactly."

// BuildPrompt renders the generation prompt for req.
func BuildPrompt(req plans.Request) string {
	var b strings.Builder
	b.WriteString("Generate a technical maintenance document for the following offshore scenario:\n")
	fmt.Fprintf(&b, "Category: %s\n", req.Category)
	fmt.Fprintf(&b, "Instrument: %s\n", req.InstrumentType)
	fmt.Fprintf(&b, "Unit type: %s\n", req.PlatformType)
	fmt.Fprintf(&b, "Instrument TAG: %s\n", req.Tag)
	if req.Category == plans.CategoryCorrective {
		fmt.Fprintf(&b, "Failure symptom: %s\n", req.Symptom)
	}
	b.WriteString("\n")
	b.WriteString(personnelGuidance(req.Settings.DefaultPersonnel))
	b.WriteString("\n\n")

	b.WriteString("ADDITIONAL SAFETY REQUIREMENTS (NR-37):\n")
	fmt.Fprintf(&b, "Produce a Preliminary Risk Analysis (safetyAnalysis) with at least %d risks specific to this instrument in an offshore environment, each with its control measure.\n\n", MinSafetyRisks)

	b.WriteString("The document must include:\n")
	b.WriteString("1. A unique ID.\n")
	b.WriteString("2. If Preventive: the recommended interval in months (intervalMonths). If Corrective: the probable technical cause (faultDiagnosis).\n")
	b.WriteString("3. Technical personnel and resources.\n")
	b.WriteString("4. Applicable standards.\n")
	b.WriteString("5. Step-by-step procedures.\n")
	b.WriteString("6. A complete risk analysis (hazards and mitigations).\n")
	b.WriteString("7. Calibration specifications.\n\n")
	fmt.Fprintf(&b, "Use %q as category, %q as instrumentType, %q as platformType and %q as tag.\n",
		req.Category, req.InstrumentType, req.PlatformType, req.Tag)
	b.WriteString("Answer in JSON following the schema. Act as a senior engineer.")
	return b.String()
}

func personnelGuidance(defaultPersonnel string) string {
	if p := strings.TrimSpace(defaultPersonnel); p != "" {
		return "For the personnel section, prefer these roles: " + p + "."
	}
	return "Determine the required technical personnel (e.g. Instrument Technician, Assistant)."
}
