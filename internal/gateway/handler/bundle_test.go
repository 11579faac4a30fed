package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"

	"launchpad/internal/diagnosis"
	"launchpad/internal/gateway/repository/session"
	wizardsvc "launchpad/internal/gateway/service/wizard"
)

type stubDiagnoser struct{ res diagnosis.Result }

func (s stubDiagnoser) Diagnose(context.Context, string) (diagnosis.Result, error) {
	return s.res, nil
}

func newBundleServer(t *testing.T, missing bool) (*httptest.Server, *wizardsvc.Service) {
	t.Helper()
	res := diagnosis.Result{
		Source: diagnosis.SourceFallback,
		Diagnosis: diagnosis.Diagnosis{
			Framework:       diagnosis.FrameworkOther,
			ProjectName:     "web",
			Branch:          "main",
			InstallCmd:      "npm install",
			BuildCmd:        "npm run build",
			OutputDir:       "dist",
			RootDir:         "./",
			NodejsVersion:   "20.x",
			RequiredEnvVars: []string{},
			MissingConfigs:  diagnosis.MissingConfigs{EsaJsonc: missing},
		},
	}
	svc := wizardsvc.New(wizardsvc.Deps{
		Sessions:  session.New(8, time.Hour, nil),
		Diagnoser: stubDiagnoser{res: res},
	})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/sessions/{id}/bundle", NewBundleHandler(svc).HandleBundle)
	mux.HandleFunc("GET /healthz", HandleHealth)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestHandleBundleServesZip(t *testing.T) {
	srv, svc := newBundleServer(t, true)
	ctx := context.Background()
	view, err := svc.CreateSession(ctx, "https://github.com/acme/web")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := svc.Diagnose(ctx, view.ID, ""); err != nil {
		t.Fatalf("Diagnose: %v", err)
	}

	resp, err := http.Get(srv.URL + "/v1/sessions/" + view.ID + "/bundle")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="launchpad-patches.zip"` {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "esa.jsonc" {
		t.Fatalf("zip entries = %v", zr.File)
	}
}

func TestHandleBundleStatuses(t *testing.T) {
	srv, svc := newBundleServer(t, false)
	ctx := context.Background()

	resp, err := http.Get(srv.URL + "/v1/sessions/missing/bundle")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing session status = %d", resp.StatusCode)
	}

	view, _ := svc.CreateSession(ctx, "https://github.com/acme/web")
	if _, err := svc.Diagnose(ctx, view.ID, ""); err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	resp, err = http.Get(srv.URL + "/v1/sessions/" + view.ID + "/bundle")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("no patches status = %d", resp.StatusCode)
	}
}

func TestSessionIDFromPath(t *testing.T) {
	cases := map[string]string{
		"/v1/sessions/abc/bundle":    "abc",
		"/v1/sessions/a/b/bundle":    "",
		"/v1/sessions/abc":           "",
		"/other/sessions/abc/bundle": "",
	}
	for in, want := range cases {
		if got := sessionIDFromPath(in); got != want {
			t.Fatalf("sessionIDFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte(`"ok":true`)) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
}
