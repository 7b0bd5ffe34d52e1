package review

import (
	"strings"

	"maintenance-backend/internal/plans"
)

// Precondition is one requirement for PDF export.
type Precondition string

const (
	RiskAcknowledgement   Precondition = "risk_acknowledgement"
	SafetyVerified        Precondition = "safety_verification"
	TechnicalReviewerName Precondition = "technical_reviewer_name"
	TechnicalComments     Precondition = "technical_comments"
	ExecutorName          Precondition = "executor_name"
	ExecutorSignature     Precondition = "executor_signature"
	SupervisorName        Precondition = "supervisor_name"
	SupervisorSignature   Precondition = "supervisor_signature"
)

// Preconditions lists every export requirement in gate priority order.
var Preconditions = []Precondition{
	RiskAcknowledgement,
	SafetyVerified,
	TechnicalReviewerName,
	TechnicalComments,
	ExecutorName,
	ExecutorSignature,
	SupervisorName,
	SupervisorSignature,
}

// Met reports whether c holds for state over plan.
func (c Precondition) Met(plan plans.Plan, state State) bool {
	switch c {
	case RiskAcknowledgement:
		return state.AcknowledgedRisks(len(plan.SafetyAnalysis)) == len(plan.SafetyAnalysis)
	case SafetyVerified:
		return state.SafetyVerification == SafetyApproved
	case TechnicalReviewerName:
		return strings.TrimSpace(state.TechnicalReviewerName) != ""
	case TechnicalComments:
		return strings.TrimSpace(state.TechnicalComments) != ""
	case ExecutorName:
		return strings.TrimSpace(state.Executor.Name) != ""
	case ExecutorSignature:
		return state.Executor.Signature != ""
	case SupervisorName:
		return strings.TrimSpace(state.Supervisor.Name) != ""
	case SupervisorSignature:
		return state.Supervisor.Signature != ""
	default:
		return false
	}
}

// Satisfied returns the met preconditions in priority order.
func Satisfied(plan plans.Plan, state State) []Precondition {
	out := make([]Precondition, 0, len(Preconditions))
	for _, c := range Preconditions {
		if c.Met(plan, state) {
			out = append(out, c)
		}
	}
	return out
}
