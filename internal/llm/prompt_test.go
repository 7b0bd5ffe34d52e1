package llm

import (
	"strings"
	"testing"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/settings"
)

func TestBuildPromptCorrectiveIncludesSymptom(t *testing.T) {
	prompt := BuildPrompt(plans.Request{
		Category:       plans.CategoryCorrective,
		InstrumentType: plans.InstrumentControlValve,
		PlatformType:   plans.PlatformFPSO,
		Tag:            "FV-2002",
		Symptom:        "valve hunting",
		Settings:       settings.Settings{DefaultPersonnel: "Rigger, Instrument Technician"},
	})
	for _, want := range []string{"Failure symptom: valve hunting", "FV-2002", "NR-37", "at least 4 risks", "prefer these roles: Rigger, Instrument Technician."} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptPreventiveOmitsSymptom(t *testing.T) {
	prompt := BuildPrompt(plans.Request{
		Category:       plans.CategoryPreventive,
		InstrumentType: plans.InstrumentFlowMeter,
		PlatformType:   plans.PlatformFixed,
		Tag:            "FT-3003",
		Symptom:        "ignored",
	})
	if strings.Contains(prompt, "Failure symptom") {
		t.Fatalf("preventive prompt must not mention a symptom")
	}
	if !strings.Contains(prompt, "Determine the required technical personnel") {
		t.Fatalf("expected default personnel guidance")
	}
}
