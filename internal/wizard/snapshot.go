package wizard

import (
	"slices"
	"time"

	"launchpad/internal/assistant"
	"launchpad/internal/diagnosis"
	"launchpad/internal/patch"
)

// Snapshot is the whole state of one wizard session. It is never mutated;
// every With method returns a new value, and stores replace snapshots as
// a whole.
type Snapshot struct {
	ID          string                        `json:"id"`
	RepoURL     string                        `json:"repoUrl"`
	Step        Step                          `json:"step"`
	Diagnosis   *diagnosis.Diagnosis          `json:"diagnosis,omitempty"`
	Source      diagnosis.Source              `json:"source,omitempty"`
	Patches     []patch.File                  `json:"patches"`
	Chat        []assistant.ChatMessage       `json:"chat"`
	EdgeOptions assistant.EdgeFunctionOptions `json:"edgeOptions"`
	UpdatedAt   time.Time                     `json:"updatedAt"`
}

// NewSnapshot starts a session at the diagnose step.
func NewSnapshot(id string, now time.Time) Snapshot {
	return Snapshot{
		ID:        id,
		Step:      StepDiagnose,
		Patches:   []patch.File{},
		Chat:      []assistant.ChatMessage{},
		UpdatedAt: now,
	}
}

// clone copies every slice and pointer so the result shares nothing
// mutable with s.
func (s Snapshot) clone() Snapshot {
	out := s
	if s.Diagnosis != nil {
		d := s.Diagnosis.Clone()
		out.Diagnosis = &d
	}
	out.Patches = slices.Clone(s.Patches)
	out.Chat = slices.Clone(s.Chat)
	if out.Patches == nil {
		out.Patches = []patch.File{}
	}
	if out.Chat == nil {
		out.Chat = []assistant.ChatMessage{}
	}
	return out
}

// WithDiagnosis replaces the diagnosis and the patch list derived from it.
func (s Snapshot) WithDiagnosis(repoURL string, res diagnosis.Result, now time.Time) Snapshot {
	out := s.clone()
	d := res.Diagnosis.Clone()
	out.RepoURL = repoURL
	out.Diagnosis = &d
	out.Source = res.Source
	out.Patches = patch.Synthesize(d)
	out.Step = StepDiagnose
	out.UpdatedAt = now
	return out
}

// WithStep moves to step.
func (s Snapshot) WithStep(step Step, now time.Time) Snapshot {
	out := s.clone()
	out.Step = step.Clamp()
	out.UpdatedAt = now
	return out
}

// WithChat appends msgs to the conversation.
func (s Snapshot) WithChat(now time.Time, msgs ...assistant.ChatMessage) Snapshot {
	out := s.clone()
	out.Chat = append(out.Chat, msgs...)
	out.UpdatedAt = now
	return out
}

// WithEdgeOptions records the edge function feature selection.
func (s Snapshot) WithEdgeOptions(opts assistant.EdgeFunctionOptions, now time.Time) Snapshot {
	out := s.clone()
	out.EdgeOptions = opts
	out.UpdatedAt = now
	return out
}

// Next returns the snapshot advanced one step.
func (s Snapshot) Next(now time.Time) Snapshot {
	return s.WithStep(Next(s.Step, len(s.Patches)), now)
}

// Prev returns the snapshot moved back one step.
func (s Snapshot) Prev(now time.Time) Snapshot {
	return s.WithStep(Prev(s.Step, len(s.Patches)), now)
}

// Checklist returns the deployment checklist, or nil before diagnosis.
func (s Snapshot) Checklist() []ChecklistField {
	if s.Diagnosis == nil {
		return nil
	}
	return Checklist(*s.Diagnosis)
}
