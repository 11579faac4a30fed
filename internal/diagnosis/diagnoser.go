package diagnosis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"launchpad/internal/llmclient"
	"launchpad/internal/source"
	"launchpad/internal/util/jsonutil"
)

// PhaseDiagnosis tags oracle calls made by the diagnoser.
const PhaseDiagnosis = "diagnosis"

// Oracle failures. Both are recovered by the fallback and only reported in
// Result.Err for logging.
var (
	ErrOracleUnavailable       = errors.New("diagnosis: oracle unavailable")
	ErrOracleOutputUnparseable = errors.New("diagnosis: oracle output unparseable")
)

// Fallback values used when the oracle cannot answer.
const (
	FallbackBuildCmd      = "npm run build"
	FallbackOutputDir     = "dist"
	FallbackRootDir       = "./"
	FallbackNodejsVersion = "20.x"
)

// Source records which path produced a diagnosis.
type Source string

const (
	SourceOracle   Source = "oracle"
	SourceFallback Source = "fallback"
)

// Result is the outcome of one inference. Err is set when the fallback
// was used and wraps one of the oracle errors.
type Result struct {
	Diagnosis Diagnosis
	Source    Source
	Err       error
}

// ContextFetcher is the part of source.Fetcher the diagnoser needs.
type ContextFetcher interface {
	Fetch(ctx context.Context, ref source.Reference) (*source.Context, error)
}

// Diagnoser combines a repository context with one oracle call.
type Diagnoser struct {
	fetcher ContextFetcher
	llm     llmclient.LLMClient
}

// New returns a Diagnoser. A nil llm makes every inference use the
// fallback.
func New(fetcher ContextFetcher, llm llmclient.LLMClient) *Diagnoser {
	return &Diagnoser{fetcher: fetcher, llm: llm}
}

// Diagnose parses repoURL, fetches the repository context and infers a
// diagnosis. Only fetch-layer errors are returned.
func (d *Diagnoser) Diagnose(ctx context.Context, repoURL string) (Result, error) {
	ref, err := source.ParseReference(repoURL)
	if err != nil {
		return Result{}, err
	}
	if d.fetcher == nil {
		return Result{}, fmt.Errorf("diagnosis: no fetcher configured")
	}
	rc, err := d.fetcher.Fetch(ctx, ref)
	if err != nil {
		return Result{}, err
	}
	return d.Infer(ctx, repoURL, rc), nil
}

// Infer never fails: oracle errors fall back to Fallback(rc).
func (d *Diagnoser) Infer(ctx context.Context, repoURL string, rc *source.Context) Result {
	if rc == nil {
		rc = &source.Context{}
	}
	log := logrus.WithField("repo", rc.Ref.String())
	fallback := Fallback(rc)

	diag, err := d.ask(ctx, repoURL, rc, fallback)
	if err != nil {
		log.WithError(err).Warn("diagnosis oracle failed, using fallback")
		return Result{Diagnosis: fallback, Source: SourceFallback, Err: err}
	}
	enforceFetchedFacts(&diag, rc)
	log.WithFields(logrus.Fields{
		"framework": diag.Framework,
		"esa_jsonc": diag.MissingConfigs.EsaJsonc,
	}).Info("diagnosis inferred")
	return Result{Diagnosis: diag, Source: SourceOracle}
}

func (d *Diagnoser) ask(ctx context.Context, repoURL string, rc *source.Context, defaults Diagnosis) (Diagnosis, error) {
	if d.llm == nil {
		return Diagnosis{}, fmt.Errorf("%w: %w", ErrOracleUnavailable, llmclient.ErrNotConfigured)
	}
	prompt, err := BuildPrompt(repoURL, rc)
	if err != nil {
		return Diagnosis{}, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	raw, err := d.llm.GenerateJSON(llmclient.WithPhase(ctx, PhaseDiagnosis), prompt, nil)
	if err != nil {
		return Diagnosis{}, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	text := jsonutil.StripCodeFence(string(raw))
	if text == "" {
		return Diagnosis{}, fmt.Errorf("%w: empty response", ErrOracleOutputUnparseable)
	}
	// null, non-object and empty-object replies carry no diagnosis.
	var fields map[string]json.RawMessage
	if err := jsonutil.UnmarshalFlex([]byte(text), &fields); err != nil {
		return Diagnosis{}, fmt.Errorf("%w: %w", ErrOracleOutputUnparseable, err)
	}
	if len(fields) == 0 {
		return Diagnosis{}, fmt.Errorf("%w: no fields in response", ErrOracleOutputUnparseable)
	}
	var out oracleDiagnosis
	if err := jsonutil.UnmarshalFlex([]byte(text), &out); err != nil {
		return Diagnosis{}, fmt.Errorf("%w: %w", ErrOracleOutputUnparseable, err)
	}
	return out.toDiagnosis(defaults), nil
}

// Fallback is the deterministic diagnosis used when the oracle fails.
func Fallback(rc *source.Context) Diagnosis {
	if rc == nil {
		rc = &source.Context{}
	}
	d := Diagnosis{
		Framework:       FrameworkOther,
		ProjectName:     rc.Ref.Repo,
		Branch:          rc.DefaultBranch,
		InstallCmd:      InstallCommand(rc.LockFiles()),
		BuildCmd:        FallbackBuildCmd,
		OutputDir:       FallbackOutputDir,
		RootDir:         FallbackRootDir,
		NodejsVersion:   FallbackNodejsVersion,
		RequiredEnvVars: []string{},
		MissingConfigs:  MissingConfigs{EsaJsonc: !rc.HasConfig},
	}
	enforceFetchedFacts(&d, rc)
	return d
}

// InstallCommand picks the install command by lockfile priority:
// pnpm, then yarn, then npm.
func InstallCommand(lf source.LockFiles) string {
	switch {
	case lf.HasPnpmLock:
		return "pnpm install"
	case lf.HasYarnLock:
		return "yarn"
	default:
		return "npm install"
	}
}

// enforceFetchedFacts lets what the fetcher saw override the model.
func enforceFetchedFacts(d *Diagnosis, rc *source.Context) {
	if rc.HasConfig {
		d.MissingConfigs.EsaJsonc = false
	}
	if strings.TrimSpace(d.ProjectName) == "" {
		d.ProjectName = rc.Ref.Repo
	}
	if strings.TrimSpace(d.Branch) == "" {
		d.Branch = rc.DefaultBranch
	}
}
