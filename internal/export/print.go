package export

import (
	"bytes"
	"html/template"
	"strings"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/review"
)

// FallbackAlert is shown when the PDF could not be produced and the printable view is served instead.
const FallbackAlert = "An error occurred while generating the PDF. Falling back to the printable view."

var printTemplate = template.Must(template.New("print").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"ack": func(st review.State, i int) bool { return st.CheckedRisks[i] },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Technical Report {{.Plan.Tag}}</title>
<style>
@page { size: A4 portrait; margin: 10mm; }
body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; color: #0f172a; }
header { background: {{.Band}}; color: #fff; padding: 8px 12px; }
h2 { background: #f1f5f9; font-size: 12px; text-transform: uppercase; padding: 4px 8px; }
table { width: 100%; border-collapse: collapse; }
td, th { border: 1px solid #cbd5e1; padding: 3px 6px; text-align: left; vertical-align: top; }
.signatures { display: flex; gap: 24px; }
.signatures div { flex: 1; text-align: center; }
.signatures img { height: 70px; }
.alert { border: 2px solid #dc2626; color: #dc2626; padding: 6px; font-weight: bold; }
@media print { .alert { display: none; } }
</style>
</head>
<body onload="window.print()">
<p class="alert">{{.Alert}}</p>
<header>
<h1>TECHNICAL MAINTENANCE REPORT</h1>
<div>{{.Plan.Category}} maintenance | {{.Plan.InstrumentType}} | {{.Plan.PlatformType}}{{if .State.IsCritical}} | CRITICAL{{end}}</div>
</header>

<h2>Identification</h2>
<table>
<tr><th>TAG</th><td>{{.Plan.Tag}}</td><th>Document ID</th><td>{{.Plan.ID}}</td></tr>
<tr><th>Internal TAG</th><td>{{.State.InternalTag}}</td><th>Location</th><td>{{.State.InstallationLocation}}</td></tr>
{{if .Plan.IsCorrective}}<tr><th>Failure symptom</th><td>{{.Plan.FailureSymptom}}</td><th>Fault diagnosis</th><td>{{.Plan.FaultDiagnosis}}</td></tr>
{{else if .Plan.IntervalMonths}}<tr><th>Interval</th><td colspan="3">{{.Plan.Interval}} months</td></tr>{{end}}
</table>

{{if .Plan.Personnel}}<h2>Technical personnel</h2><ul>{{range .Plan.Personnel}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Plan.Materials}}<h2>Materials and resources</h2><ul>{{range .Plan.Materials}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Plan.Standards}}<h2>Applicable standards</h2><ul>{{range .Plan.Standards}}<li>{{.}}</li>{{end}}</ul>{{end}}

<h2>Preliminary risk analysis (NR-37)</h2>
<table>
<tr><th>#</th><th>Ack</th><th>Hazard</th><th>Mitigation</th></tr>
{{range $i, $r := .Plan.SafetyAnalysis}}<tr><td>{{inc $i}}</td><td>{{if ack $.State $i}}YES{{else}}NO{{end}}</td><td>{{$r.Hazard}}</td><td>{{$r.Mitigation}}</td></tr>
{{end}}</table>

{{if .Plan.SafetyPrecautions}}<h2>Safety precautions</h2><ul>{{range .Plan.SafetyPrecautions}}<li>{{.}}</li>{{end}}</ul>{{end}}

<h2>Test procedures</h2>
<ol>{{range .Plan.TestProcedures}}<li><strong>{{.Action}}</strong><br>{{.Details}}{{if .Reference}}<br><em>Ref: {{.Reference}}</em>{{end}}</li>{{end}}</ol>

<h2>Calibration specifications</h2>
<table>
<tr><th>Range</th><td>{{.Plan.TechnicalSpecifications.RangeMin}} to {{.Plan.TechnicalSpecifications.RangeMax}} {{.Plan.TechnicalSpecifications.Unit}}</td></tr>
<tr><th>Accuracy</th><td>{{.Plan.TechnicalSpecifications.Accuracy}}</td></tr>
<tr><th>Expected signal</th><td>{{.Plan.TechnicalSpecifications.ExpectedSignal}}</td></tr>
</table>

<h2>Field record</h2>
<table>
<tr><th>Equipment status</th><td>{{.State.EquipmentStatus}}</td></tr>
<tr><th>Field observations</th><td>{{.State.FieldObservations}}</td></tr>
{{if .Plan.IsCorrective}}<tr><th>Root cause</th><td>{{.State.RootCause}}</td></tr>{{end}}
<tr><th>Engineering conclusion</th><td>{{.State.EngineeringConclusion}}</td></tr>
</table>

<h2>Technical review</h2>
<table>
<tr><th>Reviewer</th><td>{{.State.TechnicalReviewerName}}</td><th>Date</th><td>{{.State.TechnicalReviewDate}}</td></tr>
<tr><th>Safety verification</th><td colspan="3">{{.Verification}}</td></tr>
<tr><th>Comments</th><td colspan="3">{{.State.TechnicalComments}}</td></tr>
</table>

<h2>Signatures</h2>
<div class="signatures">
<div>{{with .ExecutorSignature}}<img src="{{.}}" alt="executor signature">{{end}}<p>{{.State.Executor.Name}}<br>Registration: {{.State.Executor.Registration}}<br>{{.State.Executor.Date}} {{.State.Executor.Time}}</p></div>
<div>{{with .SupervisorSignature}}<img src="{{.}}" alt="supervisor signature">{{end}}<p>{{.State.Supervisor.Name}}<br>Stamp: {{.State.Supervisor.Stamp}}<br>{{.State.Supervisor.Date}}</p></div>
</div>
</body>
</html>
`))

type printData struct {
	Plan                plans.Plan
	State               review.State
	Alert               string
	Band                template.CSS
	Verification        string
	ExecutorSignature   template.URL
	SupervisorSignature template.URL
}

// RenderPrintView renders the printable HTML report used when the PDF cannot be produced.
func RenderPrintView(plan plans.Plan, st review.State, alert string) ([]byte, error) {
	data := printData{
		Plan:                plan,
		State:               st,
		Alert:               alert,
		Band:                "#0f172a",
		Verification:        "Pending",
		ExecutorSignature:   signatureURL(st.Executor.Signature),
		SupervisorSignature: signatureURL(st.Supervisor.Signature),
	}
	switch {
	case st.IsCritical:
		data.Band = "#7f1d1d"
	case plan.IsCorrective():
		data.Band = "#c2410c"
	}
	switch st.SafetyVerification {
	case review.SafetyApproved:
		data.Verification = "Yes (released)"
	case review.SafetyBlocked:
		data.Verification = "No (blocked)"
	}

	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// signatureURL trusts only PNG data URLs as image sources.
func signatureURL(v string) template.URL {
	if strings.HasPrefix(v, "data:image/png;base64,") {
		return template.URL(v)
	}
	return ""
}
