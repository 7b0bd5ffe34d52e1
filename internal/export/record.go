package export

import (
	"encoding/json"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/review"
)

// StateRecord is the annotation state as written to the JSON export. Edit logs are not exported.
type StateRecord struct {
	FieldObservations     string                    `json:"fieldObservations"`
	RootCause             string                    `json:"rootCause"`
	EngineeringConclusion string                    `json:"engineeringConclusion"`
	TechnicalReviewerName string                    `json:"technicalReviewerName"`
	TechnicalReviewDate   string                    `json:"technicalReviewDate"`
	TechnicalComments     string                    `json:"technicalComments"`
	SafetyVerification    review.SafetyVerification `json:"safetyVerification"`
	EquipmentStatus       review.EquipmentStatus    `json:"equipmentStatus"`
	InternalTag           string                    `json:"internalTag"`
	InstallationLocation  string                    `json:"installationLocation"`
	IsCritical            bool                      `json:"isCritical"`
	CheckedRisks          map[int]bool              `json:"checkedRisks"`
	Executor              review.Executor           `json:"executor"`
	Supervisor            review.Supervisor         `json:"supervisor"`
}

// Record is the JSON export document.
type Record struct {
	Plan  plans.Plan  `json:"plan"`
	State StateRecord `json:"state"`
}

// NewRecord snapshots plan and state for export.
func NewRecord(plan plans.Plan, st review.State) Record {
	return Record{
		Plan: plan,
		State: StateRecord{
			FieldObservations:     st.FieldObservations,
			RootCause:             st.RootCause,
			EngineeringConclusion: st.EngineeringConclusion,
			TechnicalReviewerName: st.TechnicalReviewerName,
			TechnicalReviewDate:   st.TechnicalReviewDate,
			TechnicalComments:     st.TechnicalComments,
			SafetyVerification:    st.SafetyVerification,
			EquipmentStatus:       st.EquipmentStatus,
			InternalTag:           st.InternalTag,
			InstallationLocation:  st.InstallationLocation,
			IsCritical:            st.IsCritical,
			CheckedRisks:          st.CheckedRisks,
			Executor:              st.Executor,
			Supervisor:            st.Supervisor,
		},
	}
}

// MarshalRecord renders the record with two-space indentation.
func MarshalRecord(rec Record) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}
