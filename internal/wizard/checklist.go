package wizard

import (
	"launchpad/internal/diagnosis"
	"launchpad/internal/patch"
)

// ChecklistField is one row of the console form the user fills in by hand.
type ChecklistField struct {
	Label string `json:"label"`
	Value string `json:"value"`
	// Managed fields are read from esa.jsonc by the console and can be
	// left empty.
	Managed  bool `json:"managed"`
	Copyable bool `json:"copyable"`
}

// NonProductionBuilds is the advised setting for preview branch builds.
const NonProductionBuilds = "Off (recommended)"

// FunctionPathBlank is shown when no edge function is needed.
const FunctionPathBlank = "Leave empty"

// Checklist maps a diagnosis onto the console's build settings form.
// Install, build and output fields are managed when the repository
// already carries esa.jsonc.
func Checklist(d diagnosis.Diagnosis) []ChecklistField {
	managed := !d.MissingConfigs.EsaJsonc
	fnPath := FunctionPathBlank
	switch {
	case d.FunctionPath != "":
		fnPath = d.FunctionPath
	case d.HasApiRoutes:
		fnPath = patch.DefaultFunctionEntry
	}
	fields := []ChecklistField{
		{Label: "Project name", Value: d.ProjectName, Copyable: true},
		{Label: "Production branch", Value: d.Branch, Copyable: true},
		{Label: "Non-production branch builds", Value: NonProductionBuilds},
		{Label: "Install command", Value: d.InstallCmd, Managed: managed, Copyable: true},
		{Label: "Build command", Value: d.BuildCmd, Managed: managed, Copyable: true},
		{Label: "Root directory", Value: d.RootDir, Copyable: true},
		{Label: "Static assets directory", Value: d.OutputDir, Managed: managed, Copyable: true},
		{Label: "Function file path", Value: fnPath, Copyable: fnPath != FunctionPathBlank},
		{Label: "Node.js version", Value: d.NodejsVersion, Copyable: true},
	}
	for _, name := range d.RequiredEnvVars {
		fields = append(fields, ChecklistField{Label: "Environment variable", Value: name, Copyable: true})
	}
	return fields
}
