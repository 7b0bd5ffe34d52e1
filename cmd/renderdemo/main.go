package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"maintenance-backend/internal/export"
	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/review"
	"maintenance-backend/internal/signature"
)

func main() {
	outDir := flag.String("out", "./out", "output directory for the sample report")
	critical := flag.Bool("critical", false, "mark the sample report critical")
	flag.Parse()

	plan := samplePlan()
	st, err := sampleState(plan, *critical)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sample state: %v\n", err)
		os.Exit(1)
	}

	if result := (review.Gate{}).Check(plan, st); !result.Allowed {
		fmt.Fprintf(os.Stderr, "sample state does not pass the export gate: %+v\n", result.Violations)
		os.Exit(1)
	}

	pdfBytes, err := export.PDFRenderer{}.Render(plan, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	pages, err := export.Verify(pdfBytes, plan.Tag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render validation failed: %v\n", err)
		os.Exit(1)
	}

	html, err := export.RenderPrintView(plan, st, export.FallbackAlert)
	if err != nil {
		fmt.Fprintf(os.Stderr, "print view failed: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutputs(*outDir, plan, st, pdfBytes, html); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: wrote %s (%d pages)\n", filepath.Join(*outDir, export.PDFFileName(plan)), pages)
}

func writeOutputs(dir string, plan plans.Plan, st review.State, pdfBytes, html []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, export.PDFFileName(plan)), pdfBytes, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, export.PrintFileName(plan)), html, 0o644); err != nil {
		return err
	}
	payload, err := export.MarshalRecord(export.NewRecord(plan, st))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, export.JSONFileName(plan, time.Now())), payload, 0o644)
}

func samplePlan() plans.Plan {
	return plans.Plan{
		ID:             "sample-plan",
		Category:       plans.CategoryCorrective,
		InstrumentType: plans.InstrumentControlValve,
		PlatformType:   plans.PlatformFPSO,
		Tag:            "FV-2041",
		FailureSymptom: "Valve hunting around setpoint",
		FaultDiagnosis: "Positioner feedback linkage worn; I/P converter drifting",
		Personnel:      []string{"Instrument Technician", "Mechanical Technician", "Operations Supervisor"},
		Materials:      []string{"HART communicator", "Calibrated pressure source", "Positioner linkage kit"},
		Standards:      []string{"NR-37", "NR-10", "IEC 61511", "ISA 75.25"},
		SafetyAnalysis: []plans.SafetyRisk{
			{Hazard: "Stored pneumatic energy in actuator", Mitigation: "Isolate instrument air and vent actuator"},
			{Hazard: "Process fluid release on packing", Mitigation: "Bypass and depressurise line segment"},
			{Hazard: "Hazardous area ignition source", Mitigation: "Hot work permit and continuous gas monitoring"},
			{Hazard: "Vessel motion on FPSO deck", Mitigation: "Secure tools and use three points of contact"},
		},
		SafetyPrecautions: []string{"Lockout-tagout on the control loop", "Bypass confirmed with the control room"},
		TestProcedures: []plans.Step{
			{ID: "1", Action: "Isolate and bypass", Details: "Open bypass, close block valves, confirm with control room", Reference: "NR-37 20.10"},
			{ID: "2", Action: "Inspect positioner linkage", Details: "Replace worn feedback arm", Reference: "Vendor manual"},
			{ID: "3", Action: "Stroke test", Details: "0, 25, 50, 75, 100 percent; record travel and dead band", Reference: "ISA 75.25"},
			{ID: "4", Action: "Return to service", Details: "Restore loop, monitor for 30 minutes"},
		},
		TechnicalSpecifications: plans.TechnicalSpecs{
			RangeMin: 0, RangeMax: 100, Unit: "% travel", Accuracy: "±1% span", ExpectedSignal: "4-20 mA HART",
		},
		CreatedAt: time.Now().UTC(),
	}
}

func sampleState(plan plans.Plan, critical bool) (review.State, error) {
	now := time.Now()
	st := review.Defaults(plan, now)
	for i := range plan.SafetyAnalysis {
		st.CheckedRisks[i] = true
	}
	st.IsCritical = critical
	st.EquipmentStatus = review.StatusOperational
	st.InternalTag = "P-62/FV-2041"
	st.InstallationLocation = "Module M-04, level 2"
	st.FieldObservations = "Linkage replaced; dead band reduced from 3.1% to 0.4%."
	st.EngineeringConclusion = "Valve returned to service within tolerance."
	st.SafetyVerification = review.SafetyApproved
	st.TechnicalReviewerName = "Eng. R. Costa"
	st.TechnicalComments = "Stroke test results attached to the work order."
	st.Executor = review.Executor{Name: "J. Silva", Registration: "T-4471", Date: now.Format("2006-01-02"), Time: now.Format("15:04")}
	st.Supervisor = review.Supervisor{Name: "M. Souza", Date: now.Format("2006-01-02"), Stamp: "OPS-22"}

	var err error
	if st.Executor.Signature, err = signature.Render(400, 140, []signature.Point{{X: 30, Y: 90}, {X: 120, Y: 40}, {X: 210, Y: 100}, {X: 330, Y: 50}}); err != nil {
		return st, err
	}
	if st.Supervisor.Signature, err = signature.Render(400, 140, []signature.Point{{X: 40, Y: 60}, {X: 180, Y: 110}, {X: 350, Y: 30}}); err != nil {
		return st, err
	}
	return st, nil
}
