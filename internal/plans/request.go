package plans

import (
	"strings"

	"maintenance-backend/internal/settings"
)

// Field-level messages returned by Form.Validate.
const (
	MsgCategoryInvalid   = "Maintenance category is invalid."
	MsgInstrumentMissing = "Instrument type is required."
	MsgPlatformMissing   = "Offshore unit is required."
	MsgTagMissing        = "Equipment TAG is required."
	MsgSymptomMissing    = "Describe the failure symptom for corrective maintenance."
)

// Form is the raw generation form as submitted by the user.
type Form struct {
	Category       string `json:"category"`
	InstrumentType string `json:"instrumentType"`
	PlatformType   string `json:"platformType"`
	Tag            string `json:"tag"`
	Symptom        string `json:"symptom"`
}

// Request is a validated generation request handed to the Generator.
type Request struct {
	Category       Category
	InstrumentType InstrumentType
	PlatformType   PlatformType
	Tag            string
	Symptom        string
	Settings       settings.Settings
}

// Validate checks the required selections. An empty category means Preventive;
// the symptom is required only for Corrective and dropped otherwise.
func (f Form) Validate() (Request, error) {
	fields := make(map[string]string)

	category := Category(strings.TrimSpace(f.Category))
	if category == "" {
		category = CategoryPreventive
	}
	if !category.Valid() {
		fields["category"] = MsgCategoryInvalid
	}

	instrument := InstrumentType(strings.TrimSpace(f.InstrumentType))
	if !instrument.Valid() {
		fields["instrumentType"] = MsgInstrumentMissing
	}

	platform := PlatformType(strings.TrimSpace(f.PlatformType))
	if !platform.Valid() {
		fields["platformType"] = MsgPlatformMissing
	}

	tag := strings.TrimSpace(f.Tag)
	if tag == "" {
		fields["tag"] = MsgTagMissing
	}

	symptom := strings.TrimSpace(f.Symptom)
	if category == CategoryCorrective && symptom == "" {
		fields["symptom"] = MsgSymptomMissing
	}
	if category != CategoryCorrective {
		symptom = ""
	}

	if len(fields) > 0 {
		return Request{}, &ValidationError{Fields: fields}
	}
	return Request{
		Category:       category,
		InstrumentType: instrument,
		PlatformType:   platform,
		Tag:            tag,
		Symptom:        symptom,
	}, nil
}
