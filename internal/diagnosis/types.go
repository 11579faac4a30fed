package diagnosis

import (
	"slices"
	"strings"
)

// Framework is the detected front-end framework.
type Framework string

const (
	FrameworkReact  Framework = "react"
	FrameworkVue    Framework = "vue"
	FrameworkNextJS Framework = "nextjs"
	FrameworkVite   Framework = "vite"
	FrameworkOther  Framework = "other"
)

// Frameworks lists the accepted framework values in prompt order.
var Frameworks = []Framework{FrameworkReact, FrameworkVue, FrameworkNextJS, FrameworkVite, FrameworkOther}

// ParseFramework maps free-form model output onto the enumeration.
// Anything unrecognised becomes FrameworkOther.
func ParseFramework(s string) Framework {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "react", "create-react-app", "cra":
		return FrameworkReact
	case "vue", "vue.js", "vuejs", "nuxt":
		return FrameworkVue
	case "nextjs", "next.js", "next":
		return FrameworkNextJS
	case "vite":
		return FrameworkVite
	default:
		return FrameworkOther
	}
}

// MissingConfigs flags platform files the repository lacks.
type MissingConfigs struct {
	EsaJsonc      bool `json:"esaJsonc"`
	EdgeFunctions bool `json:"edgeFunctions"`
}

// Diagnosis is the structured deployment inference for one repository.
// Values are never mutated after construction; a new run replaces the
// whole record.
type Diagnosis struct {
	Framework       Framework      `json:"framework"`
	ProjectName     string         `json:"projectName"`
	Branch          string         `json:"branch"`
	IsSpa           bool           `json:"isSpa"`
	InstallCmd      string         `json:"installCmd"`
	BuildCmd        string         `json:"buildCmd"`
	OutputDir       string         `json:"outputDir"`
	RootDir         string         `json:"rootDir"`
	FunctionPath    string         `json:"functionPath,omitempty"`
	NodejsVersion   string         `json:"nodejsVersion"`
	HasApiRoutes    bool           `json:"hasApiRoutes"`
	RequiredEnvVars []string       `json:"requiredEnvVars"`
	MissingConfigs  MissingConfigs `json:"missingConfigs"`
}

// Clone returns a deep copy.
func (d Diagnosis) Clone() Diagnosis {
	out := d
	out.RequiredEnvVars = slices.Clone(d.RequiredEnvVars)
	if out.RequiredEnvVars == nil {
		out.RequiredEnvVars = []string{}
	}
	return out
}

// oracleDiagnosis is the decode target for model output. Pointer fields
// tell an explicit false apart from an omitted field.
type oracleDiagnosis struct {
	Framework       string   `json:"framework"`
	ProjectName     string   `json:"projectName"`
	Branch          string   `json:"branch"`
	IsSpa           bool     `json:"isSpa"`
	InstallCmd      string   `json:"installCmd"`
	BuildCmd        string   `json:"buildCmd"`
	OutputDir       string   `json:"outputDir"`
	RootDir         string   `json:"rootDir"`
	FunctionPath    *string  `json:"functionPath"`
	NodejsVersion   string   `json:"nodejsVersion"`
	HasApiRoutes    bool     `json:"hasApiRoutes"`
	RequiredEnvVars []string `json:"requiredEnvVars"`
	MissingConfigs  *struct {
		EsaJsonc      *bool `json:"esaJsonc"`
		EdgeFunctions bool  `json:"edgeFunctions"`
	} `json:"missingConfigs"`
}

// toDiagnosis normalises model output; empty fields take the value from
// defaults, which is the fallback diagnosis for the same context.
func (o oracleDiagnosis) toDiagnosis(defaults Diagnosis) Diagnosis {
	d := Diagnosis{
		Framework:       ParseFramework(o.Framework),
		ProjectName:     orDefault(o.ProjectName, defaults.ProjectName),
		Branch:          orDefault(o.Branch, defaults.Branch),
		IsSpa:           o.IsSpa,
		InstallCmd:      orDefault(o.InstallCmd, defaults.InstallCmd),
		BuildCmd:        orDefault(o.BuildCmd, defaults.BuildCmd),
		OutputDir:       strings.TrimPrefix(orDefault(o.OutputDir, defaults.OutputDir), "./"),
		RootDir:         orDefault(o.RootDir, defaults.RootDir),
		NodejsVersion:   orDefault(o.NodejsVersion, defaults.NodejsVersion),
		HasApiRoutes:    o.HasApiRoutes,
		RequiredEnvVars: []string{},
		MissingConfigs:  defaults.MissingConfigs,
	}
	if o.FunctionPath != nil {
		d.FunctionPath = strings.TrimSpace(*o.FunctionPath)
	}
	for _, name := range o.RequiredEnvVars {
		if name = strings.TrimSpace(name); name != "" && !slices.Contains(d.RequiredEnvVars, name) {
			d.RequiredEnvVars = append(d.RequiredEnvVars, name)
		}
	}
	if o.MissingConfigs != nil {
		if o.MissingConfigs.EsaJsonc != nil {
			d.MissingConfigs.EsaJsonc = *o.MissingConfigs.EsaJsonc
		}
		d.MissingConfigs.EdgeFunctions = o.MissingConfigs.EdgeFunctions
	}
	return d
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
