package server

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"launchpad/internal/gateway/handler"
	"launchpad/internal/gateway/handler/rpc"
	"launchpad/internal/gateway/middleware"
)

func NewMux(
	wizardHandler *rpc.WizardHandler,
	chatHandler *rpc.ChatHandler,
	bundleHandler *handler.BundleHandler,
) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(rpc.NewWizardServiceHandler(wizardHandler))

	// Streaming and download endpoints
	mux.HandleFunc("GET /v1/chat/ws", chatHandler.HandleChatWS)
	mux.HandleFunc("GET /v1/sessions/{id}/bundle", bundleHandler.HandleBundle)
	mux.HandleFunc("GET /healthz", handler.HandleHealth)

	// Middleware
	return middleware.CORS(middleware.Logging(logrus.StandardLogger())(mux))
}
