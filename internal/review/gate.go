package review

import (
	"time"

	"maintenance-backend/internal/plans"
)

// NoticeDuration is how long the blocking notice stays visible.
const NoticeDuration = 5 * time.Second

// BlockedMessage is the headline of the blocking notice.
const BlockedMessage = "ERROR: Safety verification must be approved to print!"

// Violation describes one unmet precondition.
type Violation struct {
	Code    Precondition `json:"code"`
	Field   string       `json:"field"`
	Anchor  string       `json:"anchor"`
	Message string       `json:"message"`
}

// Notice is the transient blocking message shown when export is refused.
type Notice struct {
	Message        string `json:"message"`
	DismissAfterMS int64  `json:"dismissAfterMs"`
}

// Result is the outcome of a gate check.
type Result struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations"`
	Focus      string      `json:"focus,omitempty"`
	Notice     *Notice     `json:"notice,omitempty"`
}

// First returns the highest-priority violation, if any.
func (r Result) First() (Violation, bool) {
	if len(r.Violations) == 0 {
		return Violation{}, false
	}
	return r.Violations[0], true
}

var violationInfo = map[Precondition]Violation{
	RiskAcknowledgement:   {Field: "apr", Anchor: "risk-analysis", Message: "Acknowledge every risk in the preliminary risk analysis."},
	SafetyVerified:        {Field: "safetyVerification", Anchor: "safety-verification", Message: "Safety verification must be approved (Yes)."},
	TechnicalReviewerName: {Field: "technicalReviewerName", Anchor: "technical-reviewer", Message: "Technical reviewer name is required."},
	TechnicalComments:     {Field: "technicalComments", Anchor: "technical-comments", Message: "Technical comments are required."},
	ExecutorName:          {Field: "executor.name", Anchor: "executor-section", Message: "Executor name is required."},
	ExecutorSignature:     {Field: "executor.signature", Anchor: "executor-section", Message: "Executor signature is required."},
	SupervisorName:        {Field: "supervisor.name", Anchor: "supervisor-section", Message: "Supervisor name is required."},
	SupervisorSignature:   {Field: "supervisor.signature", Anchor: "supervisor-section", Message: "Supervisor signature is required."},
}

// Gate decides whether the PDF export may proceed.
type Gate struct{}

// Check evaluates every precondition. It has no side effects.
func (Gate) Check(plan plans.Plan, state State) Result {
	res := Result{Violations: []Violation{}}
	for _, c := range Preconditions {
		if c.Met(plan, state) {
			continue
		}
		v := violationInfo[c]
		v.Code = c
		res.Violations = append(res.Violations, v)
	}
	if first, ok := res.First(); ok {
		res.Focus = first.Anchor
		res.Notice = &Notice{Message: BlockedMessage, DismissAfterMS: NoticeDuration.Milliseconds()}
		return res
	}
	res.Allowed = true
	return res
}
