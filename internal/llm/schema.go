package llm

func str() map[string]any { return map[string]any{"type": "STRING"} }

func num() map[string]any { return map[string]any{"type": "NUMBER"} }

func strArray() map[string]any {
	return map[string]any{"type": "ARRAY", "items": str()}
}

// PlanSchema is the response schema sent to providers that support constrained output.
// createdAt is stamped by the gateway and is not requested from the model.
func PlanSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"id":             str(),
			"category":       str(),
			"instrumentType": str(),
			"platformType":   str(),
			"tag":            str(),
			"intervalMonths": map[string]any{"type": "NUMBER", "nullable": true},
			"failureSymptom": map[string]any{"type": "STRING", "nullable": true},
			"faultDiagnosis": map[string]any{"type": "STRING", "nullable": true},
			"personnel":      strArray(),
			"materials":      strArray(),
			"standards":      strArray(),
			"safetyAnalysis": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"hazard":     map[string]any{"type": "STRING", "description": "Identified hazard (e.g. pressure release, electricity)"},
						"mitigation": map[string]any{"type": "STRING", "description": "Control measure (e.g. PPE, LOTO isolation)"},
					},
					"required": []string{"hazard", "mitigation"},
				},
			},
			"testProcedures": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"id":        str(),
						"action":    str(),
						"details":   str(),
						"reference": str(),
					},
					"required": []string{"id", "action", "details", "reference"},
				},
			},
			"safetyPrecautions": strArray(),
			"technicalSpecifications": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"rangeMin":       num(),
					"rangeMax":       num(),
					"unit":           str(),
					"accuracy":       str(),
					"expectedSignal": str(),
				},
				"required": []string{"rangeMin", "rangeMax", "unit", "accuracy", "expectedSignal"},
			},
		},
		"required": []string{
			"id", "category", "instrumentType", "platformType", "tag",
			"personnel", "materials", "standards", "testProcedures", "safetyPrecautions",
			"technicalSpecifications", "safetyAnalysis",
		},
	}
}
