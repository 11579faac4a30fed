package wizardsvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"launchpad/internal/assistant"
	"launchpad/internal/diagnosis"
	"launchpad/internal/gateway/repository/artifact"
	"launchpad/internal/gateway/repository/session"
	"launchpad/internal/patch"
	"launchpad/internal/wizard"
)

// BundleName is the object name of a session's patch archive.
const BundleName = "launchpad-patches.zip"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoPatches       = errors.New("no patches to bundle")
)

// Diagnoser is the part of diagnosis.Diagnoser the service needs.
type Diagnoser interface {
	Diagnose(ctx context.Context, repoURL string) (diagnosis.Result, error)
}

// Chatter is the part of assistant.Assistant the service needs.
type Chatter interface {
	Reply(ctx context.Context, msgs []assistant.ChatMessage) string
	GenerateEdgeFunction(ctx context.Context, opts assistant.EdgeFunctionOptions) assistant.EdgeFunction
}

type Deps struct {
	Sessions  *session.Store
	Artifacts artifact.Store
	Diagnoser Diagnoser
	Assistant Chatter
	Now       func() time.Time
	NewID     func() string
}

// Service owns wizard sessions. Every operation ends with one whole
// snapshot replacement.
type Service struct {
	sessions  *session.Store
	artifacts artifact.Store
	diagnoser Diagnoser
	assistant Chatter
	now       func() time.Time
	newID     func() string
}

func New(deps Deps) *Service {
	s := &Service{
		sessions:  deps.Sessions,
		artifacts: deps.Artifacts,
		diagnoser: deps.Diagnoser,
		assistant: deps.Assistant,
		now:       deps.Now,
		newID:     deps.NewID,
	}
	if s.sessions == nil {
		s.sessions = session.New(0, time.Hour, nil)
	}
	if s.artifacts == nil {
		s.artifacts = artifact.NewMemoryStore()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// View is a snapshot plus values derived from it for clients.
type View struct {
	wizard.Snapshot
	StepName  string                  `json:"stepName"`
	Checklist []wizard.ChecklistField `json:"checklist,omitempty"`
	// BundleAvailable reports whether a patch archive can be downloaded.
	BundleAvailable bool `json:"bundleAvailable"`
}

func viewOf(s wizard.Snapshot) View {
	return View{
		Snapshot:        s,
		StepName:        s.Step.String(),
		Checklist:       s.Checklist(),
		BundleAvailable: len(s.Patches) > 0,
	}
}

// Direction selects Navigate's move.
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

func (s *Service) CreateSession(_ context.Context, repoURL string) (View, error) {
	snap := wizard.NewSnapshot(s.newID(), s.now())
	snap.RepoURL = strings.TrimSpace(repoURL)
	s.sessions.Put(snap)
	logrus.WithField("session_id", snap.ID).Info("session created")
	return viewOf(snap), nil
}

func (s *Service) GetSession(_ context.Context, id string) (View, error) {
	snap, err := s.sessions.Get(id)
	if err != nil {
		return View{}, err
	}
	return viewOf(snap), nil
}

// Diagnose runs a diagnosis for repoURL, or for the session's URL when
// repoURL is empty, and replaces diagnosis and patches in one step.
// Fetch-layer errors leave the session untouched.
func (s *Service) Diagnose(ctx context.Context, id, repoURL string) (View, error) {
	cur, err := s.sessions.Get(id)
	if err != nil {
		return View{}, err
	}
	repoURL = strings.TrimSpace(repoURL)
	if repoURL == "" {
		repoURL = cur.RepoURL
	}
	if repoURL == "" {
		return View{}, fmt.Errorf("%w: repo_url is required", ErrInvalidArgument)
	}
	if s.diagnoser == nil {
		return View{}, fmt.Errorf("diagnoser is not configured")
	}

	log := logrus.WithFields(logrus.Fields{"session_id": cur.ID, "repo_url": repoURL})
	res, err := s.diagnoser.Diagnose(ctx, repoURL)
	if err != nil {
		log.WithError(err).Warn("diagnosis failed")
		return View{}, err
	}

	next, err := s.sessions.Update(cur.ID, func(snap wizard.Snapshot) (wizard.Snapshot, error) {
		return snap.WithDiagnosis(repoURL, res, s.now()), nil
	})
	if err != nil {
		return View{}, err
	}
	s.storeBundle(ctx, next)
	log.WithFields(logrus.Fields{
		"source":  res.Source,
		"patches": len(next.Patches),
	}).Info("session diagnosed")
	return viewOf(next), nil
}

// storeBundle caches the archive under its content address. Overlapping
// diagnoses may store archives out of order; Bundle only serves the object
// whose address matches the current snapshot.
func (s *Service) storeBundle(ctx context.Context, snap wizard.Snapshot) {
	if err := s.artifacts.Delete(ctx, snap.ID); err != nil {
		logrus.WithError(err).WithField("session_id", snap.ID).Warn("clear previous bundle failed")
	}
	if len(snap.Patches) == 0 {
		return
	}
	raw, err := patch.Bundle(snap.Patches)
	if err == nil {
		err = s.artifacts.Put(ctx, snap.ID, bundleObjectName(raw), raw)
	}
	if err != nil {
		logrus.WithError(err).WithField("session_id", snap.ID).Warn("store bundle failed")
	}
}

// bundleObjectName addresses a stored archive by its content. Archives are
// byte-identical for equal patch sets.
func bundleObjectName(raw []byte) string {
	sum := sha256.Sum256(raw)
	return "bundles/" + hex.EncodeToString(sum[:12]) + ".zip"
}

func (s *Service) Navigate(_ context.Context, id string, dir Direction) (View, error) {
	next, err := s.sessions.Update(id, func(snap wizard.Snapshot) (wizard.Snapshot, error) {
		switch dir {
		case DirectionNext:
			if snap.Diagnosis == nil {
				return wizard.Snapshot{}, fmt.Errorf("%w: session has not been diagnosed", ErrInvalidArgument)
			}
			return snap.Next(s.now()), nil
		case DirectionPrev:
			return snap.Prev(s.now()), nil
		default:
			return wizard.Snapshot{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidArgument, dir)
		}
	})
	if err != nil {
		return View{}, err
	}
	return viewOf(next), nil
}

// Chat appends the user message and the assistant reply. The reply is
// computed from the history at call time; both messages are appended to
// the latest snapshot in one replacement.
func (s *Service) Chat(ctx context.Context, id, content string) (assistant.ChatMessage, View, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return assistant.ChatMessage{}, View{}, fmt.Errorf("%w: content is required", ErrInvalidArgument)
	}
	cur, err := s.sessions.Get(id)
	if err != nil {
		return assistant.ChatMessage{}, View{}, err
	}
	userMsg := assistant.ChatMessage{Role: assistant.RoleUser, Content: content, Timestamp: s.now().UnixMilli()}
	history := append(append([]assistant.ChatMessage(nil), cur.Chat...), userMsg)

	reply := assistant.ReplyNoContent
	if s.assistant != nil {
		reply = s.assistant.Reply(ctx, history)
	}
	botMsg := assistant.ChatMessage{Role: assistant.RoleAssistant, Content: reply, Timestamp: s.now().UnixMilli()}

	next, err := s.sessions.Update(cur.ID, func(snap wizard.Snapshot) (wizard.Snapshot, error) {
		return snap.WithChat(s.now(), userMsg, botMsg), nil
	})
	if err != nil {
		return assistant.ChatMessage{}, View{}, err
	}
	return botMsg, viewOf(next), nil
}

// GenerateEdgeFunction records opts on the session and returns entry code.
func (s *Service) GenerateEdgeFunction(ctx context.Context, id string, opts assistant.EdgeFunctionOptions) (assistant.EdgeFunction, error) {
	if opts.UseEdgeKV && strings.TrimSpace(opts.KVNamespace) == "" {
		return assistant.EdgeFunction{}, fmt.Errorf("%w: kv_namespace is required with EdgeKV", ErrInvalidArgument)
	}
	if _, err := s.sessions.Update(id, func(snap wizard.Snapshot) (wizard.Snapshot, error) {
		return snap.WithEdgeOptions(opts, s.now()), nil
	}); err != nil {
		return assistant.EdgeFunction{}, err
	}
	if s.assistant == nil {
		return assistant.EdgeFunction{Code: assistant.StaticEdgeFunction}, nil
	}
	return s.assistant.GenerateEdgeFunction(ctx, opts), nil
}

// Bundle is a downloadable patch archive. URL is set when the artifact
// store can serve the archive directly.
type Bundle struct {
	Name    string
	Content []byte
	URL     string
}

// Bundle returns the session's patch archive. The archive is always built
// from the current snapshot; the artifact store is only used for a direct
// download URL when it holds the matching object.
func (s *Service) Bundle(ctx context.Context, id string) (Bundle, error) {
	snap, err := s.sessions.Get(id)
	if err != nil {
		return Bundle{}, err
	}
	if len(snap.Patches) == 0 {
		return Bundle{}, ErrNoPatches
	}
	raw, err := patch.Bundle(snap.Patches)
	if err != nil {
		return Bundle{}, err
	}
	out := Bundle{Name: BundleName, Content: raw}
	name := bundleObjectName(raw)
	names, err := s.artifacts.List(ctx, snap.ID)
	if err != nil {
		logrus.WithError(err).WithField("session_id", snap.ID).Warn("list bundles failed, serving rebuilt archive")
		return out, nil
	}
	if slices.Contains(names, name) {
		if url, err := s.artifacts.GetURL(ctx, snap.ID, name); err == nil && url != "" {
			out.URL = url
		}
	}
	return out, nil
}

// Forget drops the stored artifacts of an evicted session.
func (s *Service) Forget(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.artifacts.Delete(ctx, id); err != nil {
		logrus.WithError(err).WithField("session_id", id).Warn("drop session artifacts failed")
	}
}
