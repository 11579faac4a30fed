package source

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidReference is returned when a repository URL cannot be resolved
// to an owner/repo pair.
var ErrInvalidReference = errors.New("source: invalid repository reference")

// Reference identifies a repository on the source host.
type Reference struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (r Reference) String() string { return r.Owner + "/" + r.Repo }

// ParseReference extracts owner and repository name from an absolute URL.
// Only the first two path segments are used, so tree/blob URLs resolve to
// their repository.
func ParseReference(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{}, fmt.Errorf("%w: url is empty", ErrInvalidReference)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Reference{}, fmt.Errorf("%w: %q is not an absolute url", ErrInvalidReference, raw)
	}
	owner, repo, ok := splitOwnerRepo(u.Path)
	if !ok {
		return Reference{}, fmt.Errorf("%w: %q needs /owner/repo", ErrInvalidReference, raw)
	}
	return Reference{Owner: owner, Repo: repo}, nil
}

func splitOwnerRepo(p string) (owner, repo string, ok bool) {
	parts := make([]string, 0, 2)
	for _, seg := range strings.Split(p, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		parts = append(parts, seg)
		if len(parts) == 2 {
			break
		}
	}
	if len(parts) < 2 {
		return "", "", false
	}
	owner = parts[0]
	repo = strings.TrimSuffix(parts[1], ".git")
	if repo == "" {
		return "", "", false
	}
	return owner, repo, true
}
