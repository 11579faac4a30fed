package diagnosis

import (
	"strings"

	"launchpad/internal/llmtool"
	"launchpad/internal/source"
)

// PromptInput is the JSON block embedded in the diagnosis prompt.
type PromptInput struct {
	RepoURL       string           `json:"repoUrl"`
	ProjectName   string           `json:"projectName"`
	Branch        string           `json:"branch"`
	LockFiles     source.LockFiles `json:"lockFiles"`
	HasConfig     bool             `json:"hasEsaJsonc"`
	ConfigPath    string           `json:"configPath,omitempty"`
	FileCount     int              `json:"fileCount"`
	TreeTruncated bool             `json:"treeTruncated"`
}

var diagnosisPromptSpec = llmtool.StructuredPromptSpec{
	Purpose: "Extract the deployment settings an edge hosting platform (ESA Pages with optional edge functions) needs to build and serve this repository.",
	Background: strings.Join([]string{
		"The platform installs dependencies, runs the build, and serves a static output directory.",
		"An optional edge function entry handles dynamic routes.",
		"Settings can be committed as esa.jsonc at the repository root; when it exists the console reads it automatically.",
	}, "\n"),
	OutputFields: []llmtool.PromptField{
		{Name: "framework", Type: "string", Required: true, Description: "one of react|vue|nextjs|vite|other"},
		{Name: "projectName", Type: "string", Required: true, Description: "keep the value from INPUT"},
		{Name: "branch", Type: "string", Required: true, Description: "keep the value from INPUT"},
		{Name: "isSpa", Type: "boolean", Required: true, Description: "true for client-routed single page apps"},
		{Name: "installCmd", Type: "string", Required: true},
		{Name: "buildCmd", Type: "string", Required: true},
		{Name: "outputDir", Type: "string", Required: true, Description: "build output directory relative to rootDir, without a leading ./"},
		{Name: "rootDir", Type: "string", Required: true},
		{Name: "nodejsVersion", Type: "string", Required: true},
		{Name: "hasApiRoutes", Type: "boolean", Required: true},
		{Name: "functionPath", Type: "string|null", Required: false, Description: "edge function entry file"},
		{Name: "requiredEnvVars", Type: "string[]", Required: true, Description: "names only, never values"},
		{Name: "missingConfigs", Type: "object", Required: true, Description: `{"esaJsonc": boolean, "edgeFunctions": boolean}`},
	},
	Rules: []string{
		"installCmd: pnpm-lock.yaml present -> 'pnpm install'; else yarn.lock present -> 'yarn'; else 'npm install'.",
		"buildCmd: derive from package.json scripts.build (for example 'npm run build').",
		"outputDir: Vite -> 'dist'; Next.js -> '.next' or 'out' for static export.",
		"rootDir: usually './'; in a monorepo use the directory holding the deployable package.json.",
		"nodejsVersion: package.json engines.node when present, otherwise '20.x'.",
		"functionPath: when esa.jsonc exists use its entry field; otherwise look for an api/ or functions/ directory.",
		"If hasEsaJsonc is true, missingConfigs.esaJsonc must be false.",
	},
	Assumptions: []string{
		"The file list may be truncated; absence of a path is weak evidence.",
	},
	OutputFormat: "A single JSON object with exactly the OUTPUT fields.",
}

// BuildPrompt renders the diagnosis prompt for rc.
func BuildPrompt(repoURL string, rc *source.Context) (string, error) {
	spec := llmtool.ApplyPresets(diagnosisPromptSpec, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent())
	in := PromptInput{
		RepoURL:       repoURL,
		ProjectName:   rc.Ref.Repo,
		Branch:        rc.DefaultBranch,
		LockFiles:     rc.LockFiles(),
		HasConfig:     rc.HasConfig,
		ConfigPath:    rc.ConfigPath,
		FileCount:     len(rc.Files),
		TreeTruncated: len(rc.Files) > source.MaxTreeEntries,
	}
	return llmtool.RenderStructuredPrompt(spec, in,
		llmtool.Attachment{Title: "EXISTING_CONFIG", Body: rc.ExistingConfig},
		llmtool.Attachment{Title: "PACKAGE_JSON", Body: rc.PackageJSON},
		llmtool.Attachment{Title: "FILES", Body: rc.FileTree},
	)
}
