package export

import (
	"testing"
	"time"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/review"
	"maintenance-backend/internal/signature"
)

var fixedNow = time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC)

type stubSessions struct {
	plan  plans.Plan
	state review.State
}

func (s *stubSessions) Snapshot(planID string) (plans.Plan, review.State, error) {
	if planID != s.plan.ID {
		return plans.Plan{}, review.State{}, review.ErrNoSession
	}
	return s.plan, s.state.Clone(), nil
}

func samplePlan() plans.Plan {
	interval := 12.0
	return plans.Plan{
		ID:             "plan-7",
		Category:       plans.CategoryPreventive,
		InstrumentType: plans.InstrumentPressureTransmitter,
		PlatformType:   plans.PlatformFixed,
		Tag:            "PT-1001",
		IntervalMonths: &interval,
		Personnel:      []string{"Instrumentation technician", "Safety technician"},
		Materials:      []string{"HART communicator", "Pressure calibrator"},
		Standards:      []string{"NR-37", "IEC 61511"},
		SafetyAnalysis: []plans.SafetyRisk{
			{Hazard: "Trapped pressure", Mitigation: "Isolate and bleed"},
			{Hazard: "H2S release", Mitigation: "Portable gas detector"},
			{Hazard: "Work at height", Mitigation: "Harness"},
			{Hazard: "Electrical shock", Mitigation: "Lockout"},
		},
		TestProcedures: []plans.Step{
			{ID: "1", Action: "Isolate transmitter", Details: "Close root valve", Reference: "ISA 5.1"},
			{ID: "2", Action: "Five-point calibration", Details: "0, 25, 50, 75, 100 percent"},
		},
		TechnicalSpecifications: plans.TechnicalSpecs{
			RangeMin: 0, RangeMax: 250, Unit: "bar", Accuracy: "0.075%", ExpectedSignal: "4-20 mA",
		},
		CreatedAt: fixedNow,
	}
}

func signed(t *testing.T) string {
	t.Helper()
	v, err := signature.Render(400, 140, []signature.Point{{X: 20, Y: 100}, {X: 120, Y: 30}, {X: 260, Y: 90}})
	if err != nil {
		t.Fatalf("render signature: %v", err)
	}
	return v
}

// releasedState satisfies every export precondition.
func releasedState(t *testing.T, plan plans.Plan) review.State {
	t.Helper()
	st := review.Defaults(plan, fixedNow)
	for i := range plan.SafetyAnalysis {
		st.CheckedRisks[i] = true
	}
	st.SafetyVerification = review.SafetyApproved
	st.EquipmentStatus = review.StatusOperational
	st.TechnicalReviewerName = "Eng. Costa"
	st.TechnicalComments = "Calibration within tolerance."
	st.FieldObservations = "Zero drift corrected."
	st.Executor.Name = "J. Silva"
	st.Executor.Registration = "12345"
	st.Executor.Signature = signed(t)
	st.Supervisor.Name = "M. Souza"
	st.Supervisor.Stamp = "OPS-22"
	st.Supervisor.Signature = signed(t)
	return st
}
