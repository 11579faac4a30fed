package llmtool

import (
	"strings"
	"testing"
)

func TestRenderStructuredPrompt_RendersSections(t *testing.T) {
	spec := StructuredPromptSpec{
		Purpose:      "Infer deployment settings.",
		Background:   "Static hosting with edge functions.",
		OutputFormat: "JSON only.",
		Language:     "English",
		OutputFields: []PromptField{
			{Name: "installCmd", Type: "string", Required: true, Description: "Install command."},
			{Name: "functionPath", Type: "string|null", Required: false},
		},
		Constraints: []string{"No markdown."},
		Rules:       []string{"Prefer pnpm when its lockfile exists."},
		Assumptions: []string{"rootDir defaults to ./"},
		Examples: []PromptExample{
			{InputJSON: `{"hasYarnLock":true}`, OutputJSON: `{"installCmd":"yarn"}`},
		},
	}

	out, err := RenderStructuredPrompt(spec,
		map[string]any{"repo": "acme/web"},
		Attachment{Title: "package json", Body: `{"name":"web"}`},
		Attachment{Title: "files", Body: ""},
	)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	wantSections := []string{
		"[PURPOSE]",
		"[BACKGROUND]",
		"[INPUT]",
		"[PACKAGE_JSON]",
		"[OUTPUT]",
		"[CONSTRAINTS]",
		"[RULES]",
		"[ASSUMPTIONS]",
		"[OUTPUT_FORMAT]",
		"[LANGUAGE]",
		"[EXAMPLES]",
	}
	for _, sec := range wantSections {
		if !strings.Contains(out, sec) {
			t.Fatalf("expected section %s in prompt", sec)
		}
	}
	if strings.Contains(out, "[FILES]") {
		t.Fatalf("empty attachment should be omitted:\n%s", out)
	}
	if !strings.Contains(out, "- functionPath (string|null, optional)") {
		t.Fatalf("optional field not rendered:\n%s", out)
	}
	if strings.Index(out, "[INPUT]") > strings.Index(out, "[PACKAGE_JSON]") {
		t.Fatalf("attachments should follow the input section")
	}
}

func TestRenderStructuredPrompt_RequiresPurpose(t *testing.T) {
	spec := StructuredPromptSpec{
		OutputFields: []PromptField{{Name: "summary", Type: "string", Required: true}},
	}
	_, err := RenderStructuredPrompt(spec, nil)
	if err == nil || !strings.Contains(err.Error(), "purpose") {
		t.Fatalf("expected purpose error, got %v", err)
	}
}

func TestRenderStructuredPrompt_RequiresOutputFields(t *testing.T) {
	_, err := RenderStructuredPrompt(StructuredPromptSpec{Purpose: "x"}, nil)
	if err == nil || !strings.Contains(err.Error(), "output fields") {
		t.Fatalf("expected output fields error, got %v", err)
	}
}

func TestApplyPresets_PrependConstraintsAndRules(t *testing.T) {
	spec := StructuredPromptSpec{
		Purpose:      "x",
		OutputFields: []PromptField{{Name: "summary", Type: "string", Required: true}},
		Constraints:  []string{"spec-constraint"},
		Rules:        []string{"spec-rule"},
	}
	preset := PromptPreset{
		Constraints: []string{"preset-constraint"},
		Rules:       []string{"preset-rule"},
	}
	applied := ApplyPresets(spec, preset)
	if len(applied.Constraints) < 2 || applied.Constraints[0] != "preset-constraint" {
		t.Fatalf("expected preset constraint prepended, got %+v", applied.Constraints)
	}
	if len(applied.Rules) < 2 || applied.Rules[0] != "preset-rule" {
		t.Fatalf("expected preset rule prepended, got %+v", applied.Rules)
	}
}
