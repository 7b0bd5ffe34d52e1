package plans

import (
	"errors"
	"testing"
)

func TestValidateCorrectiveRequiresSymptom(t *testing.T) {
	form := Form{
		Category:       string(CategoryCorrective),
		InstrumentType: string(InstrumentPressureTransmitter),
		PlatformType:   string(PlatformFPSO),
		Tag:            "PT-1001",
		Symptom:        "   ",
	}
	_, err := form.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["symptom"] != MsgSymptomMissing {
		t.Fatalf("expected symptom message, got %q", verr.Fields["symptom"])
	}
	if len(verr.Fields) != 1 {
		t.Fatalf("expected only symptom to be flagged, got %v", verr.Fields)
	}
}

func TestValidatePreventiveDropsSymptom(t *testing.T) {
	form := Form{
		InstrumentType: string(InstrumentControlValve),
		PlatformType:   string(PlatformFixed),
		Tag:            "  FV-2002 ",
		Symptom:        "stuck",
	}
	req, err := form.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if req.Category != CategoryPreventive {
		t.Fatalf("expected default category Preventive, got %q", req.Category)
	}
	if req.Tag != "FV-2002" {
		t.Fatalf("expected trimmed tag, got %q", req.Tag)
	}
	if req.Symptom != "" {
		t.Fatalf("expected symptom to be dropped for preventive, got %q", req.Symptom)
	}
}

func TestValidateReportsEveryMissingField(t *testing.T) {
	_, err := Form{Category: "Predictive"}.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"category", "instrumentType", "platformType", "tag"} {
		if verr.Fields[field] == "" {
			t.Fatalf("expected %s to be flagged, got %v", field, verr.Fields)
		}
	}
	if _, ok := verr.Fields["symptom"]; ok {
		t.Fatalf("symptom should not be flagged for non-corrective category")
	}
}
