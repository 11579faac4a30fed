package rpc

import (
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"launchpad/internal/gateway/repository/session"
	wizardsvc "launchpad/internal/gateway/service/wizard"
	"launchpad/internal/source"
)

// toConnectError maps service and fetch errors onto connect codes. The
// message is kept verbatim so clients can show it to users.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	var unavailable *source.UnavailableError
	switch {
	case errors.Is(err, source.ErrInvalidReference), errors.Is(err, wizardsvc.ErrInvalidArgument):
		return connect.CodeInvalidArgument
	case errors.Is(err, source.ErrRateLimited):
		return connect.CodeResourceExhausted
	case errors.Is(err, session.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, wizardsvc.ErrNoPatches):
		return connect.CodeFailedPrecondition
	case errors.As(err, &unavailable):
		if unavailable.StatusCode == http.StatusNotFound {
			return connect.CodeNotFound
		}
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}

// wsCode is the lower-case code name used on the chat websocket.
func wsCode(err error) string {
	return codeOf(err).String()
}
