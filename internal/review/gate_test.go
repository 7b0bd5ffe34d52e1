package review

import (
	"testing"

	"maintenance-backend/internal/plans"
)

func TestGateBlocksOnPartialRiskAcknowledgement(t *testing.T) {
	plan := planWithRisks("p1", plans.CategoryPreventive, 4)
	st := completeState(plan)
	st.CheckedRisks = map[int]bool{0: true, 1: true}

	res := Gate{}.Check(plan, st)
	if res.Allowed {
		t.Fatalf("expected export to be blocked")
	}
	first, _ := res.First()
	if first.Code != RiskAcknowledgement {
		t.Fatalf("expected risk acknowledgement first, got %s", first.Code)
	}
	if res.Focus != "risk-analysis" {
		t.Fatalf("unexpected focus %q", res.Focus)
	}
	if res.Notice == nil || res.Notice.DismissAfterMS != 5000 {
		t.Fatalf("expected 5s notice, got %+v", res.Notice)
	}
	if len(res.Violations) != 1 {
		t.Fatalf("expected only the risk violation, got %+v", res.Violations)
	}
}

func TestGateRequiresSafetyVerificationYes(t *testing.T) {
	plan := planWithRisks("p1", plans.CategoryCorrective, 4)
	for _, v := range []SafetyVerification{SafetyUnset, SafetyBlocked} {
		st := completeState(plan)
		st.SafetyVerification = v
		res := Gate{}.Check(plan, st)
		first, ok := res.First()
		if res.Allowed || !ok || first.Code != SafetyVerified {
			t.Fatalf("safetyVerification=%q: expected block on safety verification, got %+v", v, res)
		}
	}
}

func TestGatePriorityOrder(t *testing.T) {
	plan := planWithRisks("p1", plans.CategoryPreventive, 2)
	st := Defaults(plan, fixedNow)

	res := Gate{}.Check(plan, st)
	if len(res.Violations) != len(Preconditions) {
		t.Fatalf("expected every precondition unmet, got %d", len(res.Violations))
	}
	for i, v := range res.Violations {
		if v.Code != Preconditions[i] {
			t.Fatalf("violation %d: got %s want %s", i, v.Code, Preconditions[i])
		}
	}
}

func TestGateAllowsCompleteState(t *testing.T) {
	plan := planWithRisks("p1", plans.CategoryPreventive, 4)
	res := Gate{}.Check(plan, completeState(plan))
	if !res.Allowed || len(res.Violations) != 0 || res.Notice != nil {
		t.Fatalf("expected export to be allowed, got %+v", res)
	}
}

func TestGateIgnoresOutOfRangeAcknowledgements(t *testing.T) {
	plan := planWithRisks("p1", plans.CategoryPreventive, 2)
	st := completeState(plan)
	st.CheckedRisks = map[int]bool{0: true, 5: true, -1: true}

	if RiskAcknowledgement.Met(plan, st) {
		t.Fatalf("stale indices must not count toward acknowledgement")
	}
}

func TestGateWhitespaceNamesAreMissing(t *testing.T) {
	plan := planWithRisks("p1", plans.CategoryPreventive, 0)
	st := completeState(plan)
	st.TechnicalReviewerName = "   "
	st.Supervisor.Name = "\t"

	got := map[Precondition]bool{}
	for _, v := range (Gate{}).Check(plan, st).Violations {
		got[v.Code] = true
	}
	if !got[TechnicalReviewerName] || !got[SupervisorName] || len(got) != 2 {
		t.Fatalf("unexpected violations %v", got)
	}
}

func TestSatisfiedSubset(t *testing.T) {
	plan := planWithRisks("p1", plans.CategoryPreventive, 3)
	st := Defaults(plan, fixedNow)
	st.SafetyVerification = SafetyApproved
	st.Executor.Name = "J. Silva"

	got := Satisfied(plan, st)
	if len(got) != 2 || got[0] != SafetyVerified || got[1] != ExecutorName {
		t.Fatalf("unexpected satisfied set %v", got)
	}
}
