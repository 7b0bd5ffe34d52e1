package plans

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RequiredFields are the keys a value must carry to be accepted as a Plan.
var RequiredFields = []string{
	"id",
	"category",
	"instrumentType",
	"platformType",
	"tag",
	"testProcedures",
	"technicalSpecifications",
	"createdAt",
}

// IsValidPlan is the shallow structural check applied to generated and persisted
// plans: raw must be a JSON object holding every key in RequiredFields. Nested
// shapes and the number of safety-analysis entries are not inspected.
func IsValidPlan(raw []byte) bool {
	return missingField(raw) == ""
}

// Decode accepts raw only if it passes IsValidPlan and decodes cleanly. Partial
// documents are never returned.
func Decode(raw []byte) (Plan, error) {
	if missing := missingField(raw); missing != "" {
		return Plan{}, fmt.Errorf("%w: %s", ErrInvalidDocument, missing)
	}
	var plan Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return plan, nil
}

func missingField(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "not an object"
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || fields == nil {
		return "not an object"
	}
	for _, key := range RequiredFields {
		if _, ok := fields[key]; !ok {
			return "missing " + key
		}
	}
	return ""
}
