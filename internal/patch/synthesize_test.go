package patch

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/diagnosis"
)

func spaDiagnosis() diagnosis.Diagnosis {
	return diagnosis.Diagnosis{
		Framework:      diagnosis.FrameworkReact,
		ProjectName:    "demo",
		Branch:         "main",
		IsSpa:          true,
		InstallCmd:     "npm install",
		BuildCmd:       "npm run build",
		OutputDir:      "dist",
		RootDir:        "./",
		NodejsVersion:  "20.x",
		MissingConfigs: diagnosis.MissingConfigs{EsaJsonc: true},
	}
}

func TestSynthesizeSPAConfigOnly(t *testing.T) {
	files := Synthesize(spaDiagnosis())
	require.Len(t, files, 1)
	assert.Equal(t, ConfigPath, files[0].Path)
	assert.Equal(t, TypeNew, files[0].Type)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(files[0].Content), &got))
	want := map[string]any{
		"name":           "demo",
		"buildCommand":   "npm run build",
		"installCommand": "npm install",
		"assets": map[string]any{
			"directory":        "./dist",
			"notFoundStrategy": "singlePageApplication",
		},
	}
	assert.Equal(t, want, got)
}

func TestSynthesizeStubWithoutConfig(t *testing.T) {
	d := spaDiagnosis()
	d.MissingConfigs.EsaJsonc = false
	d.HasApiRoutes = true

	files := Synthesize(d)
	require.Len(t, files, 1)
	assert.Equal(t, DefaultFunctionPath, files[0].Path)
	assert.Equal(t, PassThroughFunction, files[0].Content)
	assert.Equal(t, TypeNew, files[0].Type)
}

func TestSynthesizeNothingMissing(t *testing.T) {
	d := spaDiagnosis()
	d.MissingConfigs.EsaJsonc = false
	assert.Empty(t, Synthesize(d))
}

func TestSynthesizeConfigThenStub(t *testing.T) {
	d := spaDiagnosis()
	d.HasApiRoutes = true

	files := Synthesize(d)
	require.Len(t, files, 2)
	assert.Equal(t, ConfigPath, files[0].Path)
	assert.Equal(t, DefaultFunctionPath, files[1].Path)

	cfg, err := ParseConfig([]byte(files[0].Content))
	require.NoError(t, err)
	assert.Equal(t, DefaultFunctionEntry, cfg.Entry)
}

func TestSynthesizeKeepsDetectedFunctionPath(t *testing.T) {
	d := spaDiagnosis()
	d.HasApiRoutes = true
	d.FunctionPath = "./functions/index.js"

	files := Synthesize(d)
	require.Len(t, files, 1)
	cfg, err := ParseConfig([]byte(files[0].Content))
	require.NoError(t, err)
	assert.Equal(t, "./functions/index.js", cfg.Entry)
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	d := spaDiagnosis()
	d.HasApiRoutes = true
	first, second := Synthesize(d), Synthesize(d)
	assert.Equal(t, first, second)

	a, err := Bundle(first)
	require.NoError(t, err)
	b, err := Bundle(second)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b), "bundles differ")
}

func TestConfigRoundTrip(t *testing.T) {
	d := spaDiagnosis()
	d.ProjectName = "shop"
	d.InstallCmd = "pnpm install"
	d.BuildCmd = "pnpm build"
	d.OutputDir = "out"

	raw, err := RenderConfig(d)
	require.NoError(t, err)
	cfg, err := ParseConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.Name)
	assert.Equal(t, "pnpm build", cfg.BuildCommand)
	assert.Equal(t, "pnpm install", cfg.InstallCommand)
	assert.Equal(t, "./out", cfg.Assets.Directory)
}

func TestRenderConfigFieldOrder(t *testing.T) {
	d := spaDiagnosis()
	d.HasApiRoutes = true
	raw, err := RenderConfig(d)
	require.NoError(t, err)
	want := `{
  "name": "demo",
  "buildCommand": "npm run build",
  "installCommand": "npm install",
  "assets": {
    "directory": "./dist",
    "notFoundStrategy": "singlePageApplication"
  },
  "entry": "./edge-functions/api-proxy.js"
}`
	assert.Equal(t, want, string(raw))
}

func TestParseConfigAcceptsComments(t *testing.T) {
	raw := []byte(`{
  // generated
  "name": "demo",
  "assets": { "directory": "./dist" } /* static */
}`)
	cfg, err := ParseConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, "./dist", cfg.Assets.Directory)

	_, err = ParseConfig([]byte("{"))
	assert.Error(t, err)
}

func TestBundleContainsFiles(t *testing.T) {
	d := spaDiagnosis()
	d.HasApiRoutes = true
	raw, err := Bundle(Synthesize(d))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	names := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		names[f.Name] = string(b)
	}
	assert.Contains(t, names, "esa.jsonc")
	assert.Equal(t, PassThroughFunction, names["edge-functions/api-proxy.js"])
}

func TestBundleRejectsEmptyPath(t *testing.T) {
	_, err := Bundle([]File{{Path: "/"}})
	assert.Error(t, err)
}
