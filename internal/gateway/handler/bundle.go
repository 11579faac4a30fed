package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"launchpad/internal/gateway/repository/artifact"
	"launchpad/internal/gateway/repository/session"
	wizardsvc "launchpad/internal/gateway/service/wizard"
)

const bundlePathPrefix = "/v1/sessions/"

type BundleHandler struct {
	svc *wizardsvc.Service
}

func NewBundleHandler(svc *wizardsvc.Service) *BundleHandler {
	return &BundleHandler{svc: svc}
}

// HandleBundle serves GET /v1/sessions/{id}/bundle. Stores that can sign
// URLs get a redirect; everything else is streamed.
func (h *BundleHandler) HandleBundle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.PathValue("id")
	if sessionID == "" {
		sessionID = sessionIDFromPath(r.URL.Path)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return
	}

	b, err := h.svc.Bundle(r.Context(), sessionID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, wizardsvc.ErrNoPatches):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		logrus.WithError(err).WithField("session_id", sessionID).Error("bundle download failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if b.URL != "" {
		http.Redirect(w, r, b.URL, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType(b.Name))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", b.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Content)))
	_, _ = w.Write(b.Content)
}

func sessionIDFromPath(p string) string {
	rest, ok := strings.CutPrefix(p, bundlePathPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, "/bundle")
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": true,
	})
}
