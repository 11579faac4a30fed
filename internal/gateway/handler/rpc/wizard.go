package rpc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"launchpad/internal/assistant"
	wizardsvc "launchpad/internal/gateway/service/wizard"
)

const WizardServiceName = "launchpad.v1.WizardService"

const (
	CreateSessionProcedure        = "/" + WizardServiceName + "/CreateSession"
	GetSessionProcedure           = "/" + WizardServiceName + "/GetSession"
	DiagnoseProcedure             = "/" + WizardServiceName + "/Diagnose"
	NavigateProcedure             = "/" + WizardServiceName + "/Navigate"
	SendChatProcedure             = "/" + WizardServiceName + "/SendChat"
	GenerateEdgeFunctionProcedure = "/" + WizardServiceName + "/GenerateEdgeFunction"
)

type CreateSessionRequest struct {
	RepoURL string `json:"repoUrl,omitempty"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type DiagnoseRequest struct {
	SessionID string `json:"sessionId"`
	RepoURL   string `json:"repoUrl,omitempty"`
}

type NavigateRequest struct {
	SessionID string              `json:"sessionId"`
	Direction wizardsvc.Direction `json:"direction"`
}

type SessionResponse struct {
	Session wizardsvc.View `json:"session"`
}

type SendChatRequest struct {
	SessionID string `json:"sessionId"`
	Content   string `json:"content"`
}

type SendChatResponse struct {
	Reply   assistant.ChatMessage `json:"reply"`
	Session wizardsvc.View        `json:"session"`
}

type GenerateEdgeFunctionRequest struct {
	SessionID string                        `json:"sessionId"`
	Options   assistant.EdgeFunctionOptions `json:"options"`
}

type GenerateEdgeFunctionResponse struct {
	Function assistant.EdgeFunction `json:"function"`
}

// WizardHandler serves the wizard RPCs.
type WizardHandler struct {
	svc *wizardsvc.Service
}

func NewWizardHandler(svc *wizardsvc.Service) *WizardHandler {
	return &WizardHandler{svc: svc}
}

// NewWizardServiceHandler mounts every wizard procedure under the service
// path, mirroring generated connect handlers.
func NewWizardServiceHandler(h *WizardHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(CreateSessionProcedure, connect.NewUnaryHandler(CreateSessionProcedure, h.CreateSession, opts...))
	mux.Handle(GetSessionProcedure, connect.NewUnaryHandler(GetSessionProcedure, h.GetSession, opts...))
	mux.Handle(DiagnoseProcedure, connect.NewUnaryHandler(DiagnoseProcedure, h.Diagnose, opts...))
	mux.Handle(NavigateProcedure, connect.NewUnaryHandler(NavigateProcedure, h.Navigate, opts...))
	mux.Handle(SendChatProcedure, connect.NewUnaryHandler(SendChatProcedure, h.SendChat, opts...))
	mux.Handle(GenerateEdgeFunctionProcedure, connect.NewUnaryHandler(GenerateEdgeFunctionProcedure, h.GenerateEdgeFunction, opts...))
	return "/" + WizardServiceName + "/", mux
}

// ClientOptions are the options a connect client needs to talk to
// NewWizardServiceHandler.
func ClientOptions() []connect.ClientOption {
	return []connect.ClientOption{connect.WithCodec(jsonCodec{})}
}

func (h *WizardHandler) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[SessionResponse], error) {
	view, err := h.svc.CreateSession(ctx, strings.TrimSpace(req.Msg.RepoURL))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: view}), nil
}

func (h *WizardHandler) GetSession(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error) {
	sessionID := strings.TrimSpace(req.Msg.SessionID)
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}
	view, err := h.svc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: view}), nil
}

func (h *WizardHandler) Diagnose(ctx context.Context, req *connect.Request[DiagnoseRequest]) (*connect.Response[SessionResponse], error) {
	sessionID := strings.TrimSpace(req.Msg.SessionID)
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}
	view, err := h.svc.Diagnose(ctx, sessionID, req.Msg.RepoURL)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: view}), nil
}

func (h *WizardHandler) Navigate(ctx context.Context, req *connect.Request[NavigateRequest]) (*connect.Response[SessionResponse], error) {
	sessionID := strings.TrimSpace(req.Msg.SessionID)
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}
	dir := wizardsvc.Direction(strings.ToLower(strings.TrimSpace(string(req.Msg.Direction))))
	view, err := h.svc.Navigate(ctx, sessionID, dir)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: view}), nil
}

func (h *WizardHandler) SendChat(ctx context.Context, req *connect.Request[SendChatRequest]) (*connect.Response[SendChatResponse], error) {
	sessionID := strings.TrimSpace(req.Msg.SessionID)
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}
	reply, view, err := h.svc.Chat(ctx, sessionID, req.Msg.Content)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SendChatResponse{Reply: reply, Session: view}), nil
}

func (h *WizardHandler) GenerateEdgeFunction(ctx context.Context, req *connect.Request[GenerateEdgeFunctionRequest]) (*connect.Response[GenerateEdgeFunctionResponse], error) {
	sessionID := strings.TrimSpace(req.Msg.SessionID)
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}
	fn, err := h.svc.GenerateEdgeFunction(ctx, sessionID, req.Msg.Options)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GenerateEdgeFunctionResponse{Function: fn}), nil
}
