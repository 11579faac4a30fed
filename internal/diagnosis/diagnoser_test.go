package diagnosis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/llmclient"
	"launchpad/internal/source"
)

type stubFetcher struct {
	rc    *source.Context
	err   error
	calls int
}

func (s *stubFetcher) Fetch(_ context.Context, ref source.Reference) (*source.Context, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	rc := *s.rc
	rc.Ref = ref
	return &rc, nil
}

func yarnContext() *source.Context {
	return &source.Context{
		Ref:           source.Reference{Owner: "acme", Repo: "web"},
		DefaultBranch: "main",
		Files:         []string{"package.json", "yarn.lock", "src/main.tsx"},
		FileTree:      "package.json\nyarn.lock\nsrc/main.tsx",
		PackageJSON:   `{"name":"web","scripts":{"build":"vite build"}}`,
		HasYarnLock:   true,
	}
}

func TestInferFallbackWhenOracleFails(t *testing.T) {
	fake := llmclient.NewFakeClient().ScriptError(PhaseDiagnosis, errors.New("network down"))
	d := New(nil, fake)

	res := d.Infer(context.Background(), "https://github.com/acme/web", yarnContext())

	require.Equal(t, SourceFallback, res.Source)
	require.ErrorIs(t, res.Err, ErrOracleUnavailable)
	want := Diagnosis{
		Framework:       FrameworkOther,
		ProjectName:     "web",
		Branch:          "main",
		InstallCmd:      "yarn",
		BuildCmd:        "npm run build",
		OutputDir:       "dist",
		RootDir:         "./",
		NodejsVersion:   "20.x",
		RequiredEnvVars: []string{},
		MissingConfigs:  MissingConfigs{EsaJsonc: true, EdgeFunctions: false},
	}
	assert.Equal(t, want, res.Diagnosis)
}

func TestInferFallbackWhenOutputUnparseable(t *testing.T) {
	fake := llmclient.NewFakeClient().ScriptJSON(PhaseDiagnosis, "I think this is a React app.")
	res := New(nil, fake).Infer(context.Background(), "https://github.com/acme/web", yarnContext())

	assert.Equal(t, SourceFallback, res.Source)
	assert.ErrorIs(t, res.Err, ErrOracleOutputUnparseable)
	assert.Equal(t, "yarn", res.Diagnosis.InstallCmd)
}

func TestInferFallbackWhenOutputHasNoFields(t *testing.T) {
	for _, out := range []string{"null", "{}", "```json\n{}\n```", "[]", "42"} {
		fake := llmclient.NewFakeClient().ScriptJSON(PhaseDiagnosis, out)
		res := New(nil, fake).Infer(context.Background(), "https://github.com/acme/web", yarnContext())

		assert.Equal(t, SourceFallback, res.Source, out)
		assert.ErrorIs(t, res.Err, ErrOracleOutputUnparseable, out)
		assert.Equal(t, "yarn", res.Diagnosis.InstallCmd, out)
	}
}

func TestInferWithoutClientUsesFallback(t *testing.T) {
	res := New(nil, nil).Infer(context.Background(), "", yarnContext())
	assert.Equal(t, SourceFallback, res.Source)
	assert.ErrorIs(t, res.Err, llmclient.ErrNotConfigured)
}

func TestInferParsesFencedOracleOutput(t *testing.T) {
	out := "```json\n" + `{
  "framework": "Next.js",
  "projectName": "",
  "branch": "main",
  "isSpa": false,
  "installCmd": "pnpm install",
  "buildCmd": "pnpm build",
  "outputDir": "./out",
  "rootDir": "./",
  "nodejsVersion": "18.x",
  "hasApiRoutes": true,
  "functionPath": null,
  "requiredEnvVars": ["API_URL", "API_URL", " "],
  "missingConfigs": {"esaJsonc": true}
}` + "\n```"
	fake := llmclient.NewFakeClient().ScriptJSON(PhaseDiagnosis, out)
	res := New(nil, fake).Infer(context.Background(), "https://github.com/acme/web", yarnContext())

	require.NoError(t, res.Err)
	require.Equal(t, SourceOracle, res.Source)
	got := res.Diagnosis
	assert.Equal(t, FrameworkNextJS, got.Framework)
	assert.Equal(t, "web", got.ProjectName)
	assert.Equal(t, "out", got.OutputDir)
	assert.Equal(t, "", got.FunctionPath)
	assert.Equal(t, []string{"API_URL"}, got.RequiredEnvVars)
	assert.True(t, got.MissingConfigs.EsaJsonc)
	assert.True(t, got.HasApiRoutes)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, PhaseDiagnosis, reqs[0].Phase)
	assert.Contains(t, reqs[0].Prompt, `"hasYarnLock": true`)
	assert.Contains(t, reqs[0].Prompt, "[FILES]\npackage.json\nyarn.lock")
}

func TestExistingConfigForcesEsaJsoncFalse(t *testing.T) {
	outputs := []string{
		`{"framework":"vite","missingConfigs":{"esaJsonc":true}}`,
		`{"framework":"vite"}`,
		`not json`,
	}
	for _, out := range outputs {
		rc := yarnContext()
		rc.HasConfig = true
		rc.ConfigPath = "ESA.JSONC"
		rc.ExistingConfig = `{"name":"web"}`
		fake := llmclient.NewFakeClient().ScriptJSON(PhaseDiagnosis, out)

		res := New(nil, fake).Infer(context.Background(), "https://github.com/acme/web", rc)
		if res.Diagnosis.MissingConfigs.EsaJsonc {
			t.Fatalf("output %q: esaJsonc = true with an existing config", out)
		}
	}
}

func TestInstallCommandPriority(t *testing.T) {
	cases := []struct {
		lf   source.LockFiles
		want string
	}{
		{source.LockFiles{HasPnpmLock: true, HasYarnLock: true}, "pnpm install"},
		{source.LockFiles{HasYarnLock: true}, "yarn"},
		{source.LockFiles{}, "npm install"},
	}
	for _, tc := range cases {
		if got := InstallCommand(tc.lf); got != tc.want {
			t.Fatalf("InstallCommand(%+v) = %q, want %q", tc.lf, got, tc.want)
		}
	}
}

func TestDiagnoseRejectsMalformedURLWithoutFetching(t *testing.T) {
	f := &stubFetcher{rc: yarnContext()}
	d := New(f, llmclient.NewFakeClient())

	for _, raw := range []string{"", "not a url", "https://github.com/acme", "github.com/acme/web"} {
		_, err := d.Diagnose(context.Background(), raw)
		if !errors.Is(err, source.ErrInvalidReference) {
			t.Fatalf("Diagnose(%q) err = %v", raw, err)
		}
	}
	assert.Zero(t, f.calls)
}

func TestDiagnosePropagatesFetchErrors(t *testing.T) {
	f := &stubFetcher{err: source.ErrRateLimited}
	_, err := New(f, nil).Diagnose(context.Background(), "https://github.com/acme/web")
	assert.ErrorIs(t, err, source.ErrRateLimited)
}

func TestDiagnoseEndToEnd(t *testing.T) {
	f := &stubFetcher{rc: yarnContext()}
	res, err := New(f, nil).Diagnose(context.Background(), "https://github.com/acme/web/tree/main")
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, "web", res.Diagnosis.ProjectName)
	assert.Equal(t, SourceFallback, res.Source)
}

func TestParseFramework(t *testing.T) {
	assert.Equal(t, FrameworkReact, ParseFramework(" React "))
	assert.Equal(t, FrameworkVite, ParseFramework("vite"))
	assert.Equal(t, FrameworkOther, ParseFramework("svelte"))
}

func TestBuildPromptEmbedsContext(t *testing.T) {
	rc := yarnContext()
	rc.HasConfig = true
	rc.ExistingConfig = `{"entry":"./fn.js"}`
	prompt, err := BuildPrompt("https://github.com/acme/web", rc)
	require.NoError(t, err)
	for _, want := range []string{"[PURPOSE]", "[EXISTING_CONFIG]", `{"entry":"./fn.js"}`, "[PACKAGE_JSON]", `"hasEsaJsonc": true`, "pnpm-lock.yaml"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestCloneCopiesEnvVars(t *testing.T) {
	d := Diagnosis{RequiredEnvVars: []string{"A"}}
	c := d.Clone()
	c.RequiredEnvVars[0] = "B"
	assert.Equal(t, "A", d.RequiredEnvVars[0])
}
