package review

import (
	"time"

	"maintenance-backend/internal/plans"
)

// StateKeyPrefix prefixes the persistence key of a plan's annotation state.
const StateKeyPrefix = "maintenance_state_"

// StateKey returns the persistence key for planID.
func StateKey(planID string) string {
	return StateKeyPrefix + planID
}

// SafetyVerification is the safety approval selection.
type SafetyVerification string

const (
	SafetyUnset    SafetyVerification = ""
	SafetyApproved SafetyVerification = "Yes"
	SafetyBlocked  SafetyVerification = "No"
)

// Valid reports whether v is a selectable value.
func (v SafetyVerification) Valid() bool {
	return v == SafetyUnset || v == SafetyApproved || v == SafetyBlocked
}

// EquipmentStatus is the final equipment condition recorded on the report.
type EquipmentStatus string

const (
	StatusOperational       EquipmentStatus = "Operational"
	StatusInMaintenance     EquipmentStatus = "In Maintenance"
	StatusShutDown          EquipmentStatus = "Shut Down"
	StatusRequiresAttention EquipmentStatus = "Requires Attention"
)

// EquipmentStatuses lists the selectable statuses in display order.
var EquipmentStatuses = []EquipmentStatus{
	StatusOperational,
	StatusInMaintenance,
	StatusShutDown,
	StatusRequiresAttention,
}

// Valid reports whether s is a known status.
func (s EquipmentStatus) Valid() bool {
	for _, known := range EquipmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Executor is the technician who performed the work.
type Executor struct {
	Name         string `json:"name"`
	Registration string `json:"registration"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Signature    string `json:"signature"`
}

// Supervisor approves the executed work.
type Supervisor struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Stamp     string `json:"stamp"`
	Signature string `json:"signature"`
}

// EditLog records a field change. Nothing produces entries yet; persisted ones are kept.
type EditLog struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	FieldName string `json:"fieldName"`
	OldValue  string `json:"oldValue"`
	NewValue  string `json:"newValue"`
}

// State is the mutable annotation layer over an immutable plan.
type State struct {
	FieldObservations     string             `json:"fieldObservations"`
	RootCause             string             `json:"rootCause"`
	EngineeringConclusion string             `json:"engineeringConclusion"`
	TechnicalReviewerName string             `json:"technicalReviewerName"`
	TechnicalReviewDate   string             `json:"technicalReviewDate"`
	TechnicalComments     string             `json:"technicalComments"`
	SafetyVerification    SafetyVerification `json:"safetyVerification"`
	EquipmentStatus       EquipmentStatus    `json:"equipmentStatus"`
	InternalTag           string             `json:"internalTag"`
	InstallationLocation  string             `json:"installationLocation"`
	IsCritical            bool               `json:"isCritical"`
	CheckedRisks          map[int]bool       `json:"checkedRisks"`
	Executor              Executor           `json:"executor"`
	Supervisor            Supervisor         `json:"supervisor"`
	EditLogs              []EditLog          `json:"editLogs"`
}

// Defaults returns the state of a plan that has never been annotated.
func Defaults(plan plans.Plan, now time.Time) State {
	status := StatusOperational
	if plan.IsCorrective() {
		status = StatusInMaintenance
	}
	return State{
		RootCause:           plan.FaultDiagnosis,
		TechnicalReviewDate: now.Format("2006-01-02"),
		EquipmentStatus:     status,
		CheckedRisks:        map[int]bool{},
		EditLogs:            []EditLog{},
	}
}

// Clone returns a detached copy.
func (s State) Clone() State {
	out := s
	out.CheckedRisks = make(map[int]bool, len(s.CheckedRisks))
	for k, v := range s.CheckedRisks {
		out.CheckedRisks[k] = v
	}
	out.EditLogs = append([]EditLog{}, s.EditLogs...)
	return out
}

// AcknowledgedRisks counts in-range indices marked true.
func (s State) AcknowledgedRisks(riskCount int) int {
	n := 0
	for i, ok := range s.CheckedRisks {
		if ok && i >= 0 && i < riskCount {
			n++
		}
	}
	return n
}
