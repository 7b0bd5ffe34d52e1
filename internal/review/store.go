package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/shared/metrics"
	"maintenance-backend/internal/shared/storage/kv"
	"maintenance-backend/internal/shared/telemetry"
)

// persisted mirrors State with optional fields so absent values keep their defaults.
type persisted struct {
	FieldObservations     string                     `json:"fieldObservations"`
	RootCause             string                     `json:"rootCause"`
	EngineeringConclusion string                     `json:"engineeringConclusion"`
	TechnicalReviewerName string                     `json:"technicalReviewerName"`
	TechnicalReviewDate   string                     `json:"technicalReviewDate"`
	TechnicalComments     string                     `json:"technicalComments"`
	SafetyVerification    SafetyVerification         `json:"safetyVerification"`
	EquipmentStatus       EquipmentStatus            `json:"equipmentStatus"`
	InternalTag           string                     `json:"internalTag"`
	InstallationLocation  string                     `json:"installationLocation"`
	IsCritical            *bool                      `json:"isCritical"`
	CheckedRisks          map[string]json.RawMessage `json:"checkedRisks"`
	Executor              *Executor                  `json:"executor"`
	Supervisor            *Supervisor                `json:"supervisor"`
	EditLogs              []EditLog                  `json:"editLogs"`
}

// Load returns the annotation state for plan: defaults with any persisted
// fields merged over them. Unreadable records yield defaults.
func Load(ctx context.Context, store kv.Store, plan plans.Plan, now time.Time) (State, error) {
	state := Defaults(plan, now)
	raw, ok, err := store.Get(ctx, StateKey(plan.ID))
	if err != nil {
		return State{}, fmt.Errorf("load review state: %w", err)
	}
	if !ok {
		return state, nil
	}

	var saved persisted
	if err := json.Unmarshal(raw, &saved); err != nil {
		telemetry.Warn("review.state_corrupt", map[string]any{"plan_id": plan.ID, "error": err})
		metrics.IncCorruptRead("review_state")
		return state, nil
	}
	merge(&state, saved)
	if saved.CheckedRisks != nil {
		state.CheckedRisks = decodeRisks(plan.ID, saved.CheckedRisks)
	}
	pruneRisks(&state, len(plan.SafetyAnalysis))
	return state, nil
}

// Save overwrites the persisted state for planID.
func Save(ctx context.Context, store kv.Store, planID string, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode review state: %w", err)
	}
	if err := store.Put(ctx, StateKey(planID), payload); err != nil {
		return fmt.Errorf("save review state: %w", err)
	}
	return nil
}

func merge(state *State, saved persisted) {
	setIf(&state.FieldObservations, saved.FieldObservations)
	setIf(&state.RootCause, saved.RootCause)
	setIf(&state.EngineeringConclusion, saved.EngineeringConclusion)
	setIf(&state.TechnicalReviewerName, saved.TechnicalReviewerName)
	setIf(&state.TechnicalReviewDate, saved.TechnicalReviewDate)
	setIf(&state.TechnicalComments, saved.TechnicalComments)
	setIf(&state.InternalTag, saved.InternalTag)
	setIf(&state.InstallationLocation, saved.InstallationLocation)
	if saved.SafetyVerification != SafetyUnset && saved.SafetyVerification.Valid() {
		state.SafetyVerification = saved.SafetyVerification
	}
	if saved.EquipmentStatus.Valid() {
		state.EquipmentStatus = saved.EquipmentStatus
	}
	if saved.IsCritical != nil {
		state.IsCritical = *saved.IsCritical
	}
	if saved.Executor != nil {
		state.Executor = *saved.Executor
	}
	if saved.Supervisor != nil {
		state.Supervisor = *saved.Supervisor
	}
	if saved.EditLogs != nil {
		state.EditLogs = saved.EditLogs
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// decodeRisks keeps the entries with an integer index and a boolean value.
func decodeRisks(planID string, raw map[string]json.RawMessage) map[int]bool {
	out := make(map[int]bool, len(raw))
	for key, value := range raw {
		idx, err := strconv.Atoi(key)
		var checked bool
		if err == nil {
			err = json.Unmarshal(value, &checked)
		}
		if err != nil {
			telemetry.Warn("review.risk_entry_skipped", map[string]any{"plan_id": planID, "key": key, "error": err})
			continue
		}
		out[idx] = checked
	}
	return out
}

// pruneRisks drops acknowledgements that do not address an entry of the plan.
func pruneRisks(state *State, riskCount int) {
	for i := range state.CheckedRisks {
		if i < 0 || i >= riskCount {
			delete(state.CheckedRisks, i)
		}
	}
}
