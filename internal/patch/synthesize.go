package patch

import (
	"strings"

	"launchpad/internal/diagnosis"
)

// Type classifies a patch file.
type Type string

const (
	TypeNew      Type = "new"
	TypeModified Type = "modified"
	TypeDoc      Type = "doc"
)

// File is one proposed artifact. Files are immutable once synthesized.
type File struct {
	Path        string `json:"path"`
	Content     string `json:"content"`
	Type        Type   `json:"type"`
	Description string `json:"description"`
}

// PassThroughFunction forwards every request unmodified.
const PassThroughFunction = `export default { async fetch(req) { return fetch(req); } };`

// Synthesize derives the files needed to satisfy d. It is pure: the same
// diagnosis always yields the same list. The config file, when needed,
// comes first.
func Synthesize(d diagnosis.Diagnosis) []File {
	files := make([]File, 0, 2)
	if d.MissingConfigs.EsaJsonc {
		// ConfigFor only holds strings, so encoding cannot fail.
		content, _ := RenderConfig(d)
		files = append(files, File{
			Path:        ConfigPath,
			Content:     string(content),
			Type:        TypeNew,
			Description: "ESA platform configuration",
		})
	}
	if d.HasApiRoutes && strings.TrimSpace(d.FunctionPath) == "" {
		files = append(files, File{
			Path:        DefaultFunctionPath,
			Content:     PassThroughFunction,
			Type:        TypeNew,
			Description: "Edge function pass-through template",
		})
	}
	return files
}
