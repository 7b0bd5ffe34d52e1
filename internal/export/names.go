package export

import (
	"time"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/shared/util"
)

// PDFFileName is the download name of the technical report.
func PDFFileName(plan plans.Plan) string {
	return util.Underscore("Technical_Report_" + plan.Tag + "_" + string(plan.InstrumentType) + ".pdf")
}

// PrintFileName is the download name of the printable fallback view.
func PrintFileName(plan plans.Plan) string {
	return util.Underscore("Technical_Report_" + plan.Tag + "_" + string(plan.InstrumentType) + ".html")
}

// JSONFileName is the download name of the JSON record, dated with the export day.
func JSONFileName(plan plans.Plan, now time.Time) string {
	return "Maintenance_" + plan.Tag + "_" + now.UTC().Format("2006-01-02") + ".json"
}
