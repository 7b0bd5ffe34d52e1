package review

import "maintenance-backend/internal/plans"

// View is the review payload returned by the API.
type View struct {
	PlanID            string         `json:"planId"`
	State             State          `json:"state"`
	Satisfied         []Precondition `json:"satisfied"`
	RiskCount         int            `json:"riskCount"`
	AcknowledgedRisks int            `json:"acknowledgedRisks"`
	Pads              PadsView       `json:"pads"`
	Gate              Result         `json:"gate"`
}

// PadsView reports which signature surfaces accept drawing.
type PadsView struct {
	ExecutorActive   bool `json:"executorActive"`
	SupervisorActive bool `json:"supervisorActive"`
}

// NewView assembles the review payload for plan and state.
func NewView(plan plans.Plan, state State) View {
	return View{
		PlanID:            plan.ID,
		State:             state,
		Satisfied:         Satisfied(plan, state),
		RiskCount:         len(plan.SafetyAnalysis),
		AcknowledgedRisks: state.AcknowledgedRisks(len(plan.SafetyAnalysis)),
		Pads: PadsView{
			ExecutorActive:   state.Executor.Signature == "",
			SupervisorActive: state.Supervisor.Signature == "",
		},
		Gate: Gate{}.Check(plan, state),
	}
}
