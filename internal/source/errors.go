package source

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"
)

// ErrRateLimited reports that the source host refused the request because
// the caller exhausted its API quota.
var ErrRateLimited = errors.New("source: GitHub API rate limit reached, please retry later or configure GITHUB_TOKEN")

// ErrContentDecode marks a file content response that could not be turned
// into text. It is logged by the fetcher and never returned from Fetch.
var ErrContentDecode = errors.New("source: unexpected content response")

// UnavailableError is returned when repository metadata cannot be read.
type UnavailableError struct {
	Ref        Reference
	StatusCode int
	Status     string
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("source: repository %s unavailable: %s", e.Ref, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("source: repository %s unavailable: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("source: repository %s unavailable", e.Ref)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err is an *UnavailableError.
func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}

// classify maps a go-github error to the fetcher taxonomy.
func classify(ref Reference, err error) error {
	if err == nil {
		return nil
	}
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return fmt.Errorf("%w: %s", ErrRateLimited, rle.Message)
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return fmt.Errorf("%w: %s", ErrRateLimited, abuse.Message)
	}
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		code := er.Response.StatusCode
		if code == http.StatusForbidden || code == http.StatusTooManyRequests {
			return ErrRateLimited
		}
		return &UnavailableError{Ref: ref, StatusCode: code, Status: http.StatusText(code), Err: err}
	}
	return &UnavailableError{Ref: ref, Err: err}
}
