package session

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/daily-hug/internal/model/chat"
	"github.com/zhouzirui/daily-hug/internal/model/persona"
	chatService "github.com/zhouzirui/daily-hug/internal/service/chat"
	"github.com/zhouzirui/daily-hug/internal/service/conversation"
	"github.com/zhouzirui/daily-hug/pkg/utils"
)

// Handler 托管会话的HTTP处理器
type Handler struct {
	sessions       *chatService.Service
	traits         persona.Store
	defaultPersona string
	upgrader       websocket.Upgrader
}

// New 创建托管会话处理器
func New(sessions *chatService.Service, traits persona.Store, defaultPersona string) *Handler {
	return &Handler{
		sessions:       sessions,
		traits:         traits,
		defaultPersona: defaultPersona,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.handleCreateSession)
		r.Get("/{sessionID}", h.handleGetSession)
		r.Delete("/{sessionID}", h.handleEndSession)
		r.Post("/{sessionID}/messages", h.handleSubmitMessage)
		r.Get("/{sessionID}/ws", h.handleWebSocket)
	})
}

type sessionView struct {
	Session chat.Session       `json:"session"`
	State   conversation.State `json:"state"`
}

// handleCreateSession 创建会话并完成开场白
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserName    string   `json:"userName"`
		PersonaName string   `json:"personaName"`
		Traits      []string `json:"traits"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := persona.NewParams(h.traits, payload.UserName, payload.PersonaName, h.defaultPersona, payload.Traits)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, controller, err := h.sessions.CreateSession(r.Context(), params)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sessionView{Session: session, State: controller.State()})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	controller, err := h.sessions.Controller(sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionView{Session: session, State: controller.State()})
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitMessage 提交一条用户消息，等待回复后返回最新状态
func (h *Handler) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	controller, err := h.sessions.Controller(sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sessions.Submit(r.Context(), sessionID, payload.Text); err != nil && !errors.Is(err, conversation.ErrEmptyInput) {
		switch {
		case errors.Is(err, conversation.ErrRequestInFlight), errors.Is(err, conversation.ErrGreetingPending):
			utils.RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, chatService.ErrSessionNotFound):
			respondSessionError(w, err)
		default:
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, controller.State())
}

func respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
