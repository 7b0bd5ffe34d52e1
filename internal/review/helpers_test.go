package review

import (
	"time"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/signature"
)

var fixedNow = time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC)

func planWithRisks(id string, category plans.Category, risks int) plans.Plan {
	p := plans.Plan{
		ID:             id,
		Category:       category,
		InstrumentType: plans.InstrumentGasDetector,
		PlatformType:   plans.PlatformFPSO,
		Tag:            "GD-" + id,
		FaultDiagnosis: "sensor poisoning",
		TestProcedures: []plans.Step{{ID: "1", Action: "Bump test"}},
		CreatedAt:      fixedNow,
	}
	for i := 0; i < risks; i++ {
		p.SafetyAnalysis = append(p.SafetyAnalysis, plans.SafetyRisk{Hazard: "hazard", Mitigation: "mitigation"})
	}
	return p
}

func str(s string) *string { return &s }

func scribble() Capture {
	return Capture{Strokes: []Stroke{{
		signature.Point{X: 10, Y: 10},
		signature.Point{X: 50, Y: 30},
		signature.Point{X: 90, Y: 15},
	}}}
}

// completeState satisfies every export precondition for plan.
func completeState(plan plans.Plan) State {
	st := Defaults(plan, fixedNow)
	for i := range plan.SafetyAnalysis {
		st.CheckedRisks[i] = true
	}
	st.SafetyVerification = SafetyApproved
	st.TechnicalReviewerName = "Eng. Costa"
	st.TechnicalComments = "Calibration within tolerance."
	st.Executor.Name = "J. Silva"
	st.Executor.Signature = "data:image/png;base64,AAAA"
	st.Supervisor.Name = "M. Souza"
	st.Supervisor.Signature = "data:image/png;base64,BBBB"
	return st
}
