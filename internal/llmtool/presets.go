package llmtool

// PromptPreset holds reusable constraints and rules for structured prompts.
type PromptPreset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets prepends preset constraints/rules to a structured prompt spec.
func ApplyPresets(spec StructuredPromptSpec, presets ...PromptPreset) StructuredPromptSpec {
	if len(presets) == 0 {
		return spec
	}
	var merged PromptPreset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
	}
	spec.Constraints = append(merged.Constraints, spec.Constraints...)
	spec.Rules = append(merged.Rules, spec.Rules...)
	return spec
}

// PresetStrictJSON enforces a single JSON object as the whole reply.
func PresetStrictJSON() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Return one JSON object only.",
			"Use the field names and enumerations exactly as listed; no extra fields.",
			"No markdown fences, comments, or trailing commas.",
		},
	}
}

// PresetNoInvent keeps the model to the files it was shown.
func PresetNoInvent() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Do not invent paths, scripts, or environment variables; use only the provided files.",
		},
	}
}

// PresetCodeOnly asks for a bare source file.
func PresetCodeOnly() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Return the source file only, without explanations outside code comments.",
		},
	}
}
