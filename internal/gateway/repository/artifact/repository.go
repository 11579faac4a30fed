package artifact

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
)

// Store keeps downloadable session artifacts such as patch bundles.
// Objects are addressed by session id and a relative name.
type Store interface {
	Put(ctx context.Context, sessionID, name string, content []byte) error
	Get(ctx context.Context, sessionID, name string) ([]byte, error)
	// GetURL returns a direct download URL, or "" when the backend
	// cannot serve one.
	GetURL(ctx context.Context, sessionID, name string) (string, error)
	List(ctx context.Context, sessionID string) ([]string, error)
	Delete(ctx context.Context, sessionID string) error
}

var ErrNotFound = errors.New("artifact not found")

func objectKey(sessionID, name string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	return sessionID + "/" + name, nil
}

func sessionPrefix(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return strings.TrimSuffix(sessionID, "/") + "/", nil
}

// ContentType guesses the media type from name's extension.
func ContentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == ".zip" {
		return "application/zip"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
