package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/review"
)

// Renderer produces the report document for a plan and its review state.
type Renderer interface {
	Render(plan plans.Plan, st review.State) ([]byte, error)
}

// PDFRenderer lays the report out on A4 portrait pages.
type PDFRenderer struct{}

const (
	pageMargin = 10.0
	lineH      = 5.0
)

type rgb struct{ r, g, b int }

var (
	headerSlate    = rgb{15, 23, 42}
	headerOrange   = rgb{194, 65, 12}
	headerCritical = rgb{127, 29, 29}
	sectionFill    = rgb{241, 245, 249}
)

type doc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	w   float64
}

// Render implements Renderer.
func (PDFRenderer) Render(plan plans.Plan, st review.State) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Technical Report "+plan.Tag, true)
	pdf.SetCreator("maintenance-backend", true)
	pdf.AliasNbPages("")

	d := &doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pageW, _ := pdf.GetPageSize()
	d.w = pageW - 2*pageMargin

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetTextColor(100, 116, 139)
		pdf.CellFormat(0, 4, d.tr(fmt.Sprintf("%s | %s | page %d/{nb}", plan.Tag, plan.ID, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	d.header(plan, st)
	d.identification(plan, st)
	d.list("Technical personnel", plan.Personnel)
	d.list("Materials and resources", plan.Materials)
	d.list("Applicable standards", plan.Standards)
	d.risks(plan, st)
	d.list("Safety precautions", plan.SafetyPrecautions)
	d.procedures(plan)
	d.specs(plan.TechnicalSpecifications)
	d.fieldRecord(plan, st)
	d.technicalReview(st)
	d.signatures(st)

	if pdf.Err() {
		return nil, fmt.Errorf("render pdf: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *doc) header(plan plans.Plan, st review.State) {
	band := headerSlate
	switch {
	case st.IsCritical:
		band = headerCritical
	case plan.IsCorrective():
		band = headerOrange
	}
	p := d.pdf
	p.SetFillColor(band.r, band.g, band.b)
	p.SetTextColor(255, 255, 255)
	p.SetFont("Helvetica", "B", 15)
	p.CellFormat(d.w, 10, d.tr("TECHNICAL MAINTENANCE REPORT"), "", 1, "L", true, 0, "")
	p.SetFont("Helvetica", "", 9)
	subtitle := fmt.Sprintf("%s maintenance | %s | %s", plan.Category, plan.InstrumentType, plan.PlatformType)
	if st.IsCritical {
		subtitle += " | CRITICAL"
	}
	p.CellFormat(d.w, 6, d.tr(subtitle), "", 1, "L", true, 0, "")
	p.SetTextColor(0, 0, 0)
	p.Ln(3)
}

func (d *doc) section(title string) {
	p := d.pdf
	p.Ln(2)
	p.SetFillColor(sectionFill.r, sectionFill.g, sectionFill.b)
	p.SetFont("Helvetica", "B", 10)
	p.CellFormat(d.w, 7, d.tr(strings.ToUpper(title)), "", 1, "L", true, 0, "")
	p.SetFont("Helvetica", "", 9)
	p.Ln(1)
}

func (d *doc) field(label, value string) {
	p := d.pdf
	if strings.TrimSpace(value) == "" {
		value = "-"
	}
	p.SetFont("Helvetica", "B", 9)
	p.CellFormat(50, lineH, d.tr(label), "", 0, "L", false, 0, "")
	p.SetFont("Helvetica", "", 9)
	p.MultiCell(d.w-50, lineH, d.tr(value), "", "L", false)
}

func (d *doc) list(title string, items []string) {
	if len(items) == 0 {
		return
	}
	d.section(title)
	for _, item := range items {
		d.pdf.MultiCell(d.w, lineH, d.tr("- "+item), "", "L", false)
	}
}

func (d *doc) identification(plan plans.Plan, st review.State) {
	d.section("Identification")
	d.field("TAG", plan.Tag)
	d.field("Document ID", plan.ID)
	d.field("Generated at", plan.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	d.field("Internal TAG", st.InternalTag)
	d.field("Installation location", st.InstallationLocation)
	if plan.IsCorrective() {
		d.field("Failure symptom", plan.FailureSymptom)
		d.field("Fault diagnosis", plan.FaultDiagnosis)
	} else if plan.IntervalMonths != nil {
		d.field("Interval", plan.Interval()+" months")
	}
}

func (d *doc) risks(plan plans.Plan, st review.State) {
	d.section("Preliminary risk analysis (NR-37)")
	p := d.pdf
	p.SetFont("Helvetica", "B", 8)
	p.CellFormat(10, 6, "#", "1", 0, "C", false, 0, "")
	p.CellFormat(18, 6, "ACK", "1", 0, "C", false, 0, "")
	p.CellFormat((d.w-28)/2, 6, "HAZARD", "1", 0, "L", false, 0, "")
	p.CellFormat((d.w-28)/2, 6, "MITIGATION", "1", 1, "L", false, 0, "")
	p.SetFont("Helvetica", "", 8)
	for i, r := range plan.SafetyAnalysis {
		ack := "NO"
		if st.CheckedRisks[i] {
			ack = "YES"
		}
		text := fmt.Sprintf("%d. [%s] %s / %s", i+1, ack, r.Hazard, r.Mitigation)
		p.MultiCell(d.w, lineH, d.tr(text), "B", "L", false)
	}
	d.field("Acknowledged", fmt.Sprintf("%d of %d", st.AcknowledgedRisks(len(plan.SafetyAnalysis)), len(plan.SafetyAnalysis)))
}

func (d *doc) procedures(plan plans.Plan) {
	if len(plan.TestProcedures) == 0 {
		return
	}
	d.section("Test procedures")
	p := d.pdf
	for _, step := range plan.TestProcedures {
		p.SetFont("Helvetica", "B", 9)
		p.MultiCell(d.w, lineH, d.tr(step.ID+". "+step.Action), "", "L", false)
		p.SetFont("Helvetica", "", 9)
		if step.Details != "" {
			p.MultiCell(d.w, lineH, d.tr(step.Details), "", "L", false)
		}
		if step.Reference != "" {
			p.SetFont("Helvetica", "I", 8)
			p.MultiCell(d.w, lineH, d.tr("Ref: "+step.Reference), "", "L", false)
		}
		p.Ln(1)
	}
}

func (d *doc) specs(s plans.TechnicalSpecs) {
	d.section("Calibration specifications")
	d.field("Range", fmt.Sprintf("%s to %s %s", formatNumber(s.RangeMin), formatNumber(s.RangeMax), s.Unit))
	d.field("Accuracy", s.Accuracy)
	d.field("Expected signal", s.ExpectedSignal)
}

func (d *doc) fieldRecord(plan plans.Plan, st review.State) {
	d.section("Field record")
	d.field("Equipment status", string(st.EquipmentStatus))
	d.field("Field observations", st.FieldObservations)
	if plan.IsCorrective() {
		d.field("Root cause", st.RootCause)
	}
	d.field("Engineering conclusion", st.EngineeringConclusion)
}

func (d *doc) technicalReview(st review.State) {
	d.section("Technical review")
	d.field("Reviewer", st.TechnicalReviewerName)
	d.field("Review date", st.TechnicalReviewDate)
	verification := "Pending"
	switch st.SafetyVerification {
	case review.SafetyApproved:
		verification = "Yes (released)"
	case review.SafetyBlocked:
		verification = "No (blocked)"
	}
	d.field("Safety verification", verification)
	d.field("Comments", st.TechnicalComments)
}

func (d *doc) signatures(st review.State) {
	d.section("Signatures")
	p := d.pdf
	if p.GetY() > 230 {
		p.AddPage()
	}
	colW := d.w / 2
	top := p.GetY()
	d.signatureBlock("executor", pageMargin, top, colW, st.Executor.Signature, []string{
		"Executor: " + st.Executor.Name,
		"Registration: " + st.Executor.Registration,
		"Date/time: " + strings.TrimSpace(st.Executor.Date+" "+st.Executor.Time),
	})
	d.signatureBlock("supervisor", pageMargin+colW, top, colW, st.Supervisor.Signature, []string{
		"Supervisor: " + st.Supervisor.Name,
		"Stamp: " + st.Supervisor.Stamp,
		"Date: " + st.Supervisor.Date,
	})
	p.SetY(top + 45)
}

func (d *doc) signatureBlock(name string, x, y, w float64, dataURL string, lines []string) {
	p := d.pdf
	const imgH = 25.0
	if raw, ok := decodePNG(dataURL); ok {
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		p.RegisterImageOptionsReader("sig-"+name, opts, bytes.NewReader(raw))
		p.ImageOptions("sig-"+name, x+5, y, w-10, imgH, false, opts, 0, "")
	}
	p.Line(x+5, y+imgH+1, x+w-5, y+imgH+1)
	p.SetXY(x, y+imgH+2)
	p.SetFont("Helvetica", "", 8)
	for _, line := range lines {
		p.SetX(x)
		p.CellFormat(w, 4, d.tr(line), "", 2, "C", false, 0, "")
	}
}

func decodePNG(dataURL string) ([]byte, bool) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(dataURL[len(prefix):])
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
