package review

import (
	"fmt"
	"strings"
)

// ExecutorPatch updates the executor's text fields.
type ExecutorPatch struct {
	Name         *string `json:"name"`
	Registration *string `json:"registration"`
	Date         *string `json:"date"`
	Time         *string `json:"time"`
}

// SupervisorPatch updates the supervisor's text fields.
type SupervisorPatch struct {
	Name  *string `json:"name"`
	Date  *string `json:"date"`
	Stamp *string `json:"stamp"`
}

// Patch is a partial update; nil fields are left unchanged. Signatures and risk
// acknowledgements have their own mutations.
type Patch struct {
	FieldObservations     *string             `json:"fieldObservations"`
	RootCause             *string             `json:"rootCause"`
	EngineeringConclusion *string             `json:"engineeringConclusion"`
	TechnicalReviewerName *string             `json:"technicalReviewerName"`
	TechnicalReviewDate   *string             `json:"technicalReviewDate"`
	TechnicalComments     *string             `json:"technicalComments"`
	SafetyVerification    *SafetyVerification `json:"safetyVerification"`
	EquipmentStatus       *EquipmentStatus    `json:"equipmentStatus"`
	InternalTag           *string             `json:"internalTag"`
	InstallationLocation  *string             `json:"installationLocation"`
	IsCritical            *bool               `json:"isCritical"`
	Executor              *ExecutorPatch      `json:"executor"`
	Supervisor            *SupervisorPatch    `json:"supervisor"`
}

// Apply returns state with p applied.
func (p Patch) Apply(state State) (State, error) {
	if p.SafetyVerification != nil && !p.SafetyVerification.Valid() {
		return state, fmt.Errorf("%w: safetyVerification %q", ErrInvalidInput, *p.SafetyVerification)
	}
	if p.EquipmentStatus != nil && !p.EquipmentStatus.Valid() {
		return state, fmt.Errorf("%w: equipmentStatus %q", ErrInvalidInput, *p.EquipmentStatus)
	}
	if p.TechnicalReviewDate != nil && *p.TechnicalReviewDate != "" && !isDate(*p.TechnicalReviewDate) {
		return state, fmt.Errorf("%w: technicalReviewDate must be YYYY-MM-DD", ErrInvalidInput)
	}

	out := state.Clone()
	assign(&out.FieldObservations, p.FieldObservations)
	assign(&out.RootCause, p.RootCause)
	assign(&out.EngineeringConclusion, p.EngineeringConclusion)
	assign(&out.TechnicalReviewerName, p.TechnicalReviewerName)
	assign(&out.TechnicalReviewDate, p.TechnicalReviewDate)
	assign(&out.TechnicalComments, p.TechnicalComments)
	assign(&out.InternalTag, p.InternalTag)
	assign(&out.InstallationLocation, p.InstallationLocation)
	if p.SafetyVerification != nil {
		out.SafetyVerification = *p.SafetyVerification
	}
	if p.EquipmentStatus != nil {
		out.EquipmentStatus = *p.EquipmentStatus
	}
	if p.IsCritical != nil {
		out.IsCritical = *p.IsCritical
	}
	if e := p.Executor; e != nil {
		assign(&out.Executor.Name, e.Name)
		assign(&out.Executor.Registration, e.Registration)
		assign(&out.Executor.Date, e.Date)
		assign(&out.Executor.Time, e.Time)
	}
	if s := p.Supervisor; s != nil {
		assign(&out.Supervisor.Name, s.Name)
		assign(&out.Supervisor.Date, s.Date)
		assign(&out.Supervisor.Stamp, s.Stamp)
	}
	return out, nil
}

func assign(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func isDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	return strings.Trim(s[:4]+s[5:7]+s[8:], "0123456789") == ""
}
