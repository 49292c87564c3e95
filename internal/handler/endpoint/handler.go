package endpoint

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/daily-hug/internal/model/chat"
	"github.com/zhouzirui/daily-hug/internal/service/ai"
	"github.com/zhouzirui/daily-hug/pkg/utils"
)

// Greeter 生成开场白。
type Greeter interface {
	Greet(userName string) string
}

// Handler 对外提供 /greet 与 /chat 接口，终端前端通过它们与角色对话。
type Handler struct {
	greeter Greeter
	replier ai.Replier
}

// New 创建接口处理器。replier 为 nil 时 /chat 返回 503。
func New(greeter Greeter, replier ai.Replier) *Handler {
	return &Handler{
		greeter: greeter,
		replier: replier,
	}
}

// RegisterRoutes 注册根路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/hello/{name}", h.handleHello)
	r.Post("/greet", h.handleGreet)
	r.Post("/chat", h.handleChat)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (h *Handler) handleHello(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Hello " + name})
}

// handleGreet 返回随机开场白
func (h *Handler) handleGreet(w http.ResponseWriter, r *http.Request) {
	var req chat.GreetRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	greeting := h.greeter.Greet(req.UserName)
	log.Printf("[endpoint] greet user=%s persona=%s", req.UserName, req.ModelName)
	utils.RespondJSON(w, http.StatusOK, chat.GreetResponse{Response: greeting})
}

// handleChat 生成角色回复，并返回追加回复后的最近历史
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.ExchangeRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserName) == "" {
		utils.RespondError(w, http.StatusBadRequest, "user_name is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	if h.replier == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai chat unavailable")
		return
	}

	log.Printf("[endpoint] chat user=%s persona=%s history=%d", req.UserName, req.ModelName, len(req.History))
	reply, err := h.replier.Reply(r.Context(), req)
	if err != nil {
		log.Printf("[endpoint] reply failed for user=%s: %v", req.UserName, err)
		utils.RespondError(w, http.StatusInternalServerError, "reply generation failed")
		return
	}

	history := make([]chat.HistoryEntry, 0, len(req.History)+1)
	history = append(history, req.History...)
	history = append(history, chat.HistoryEntry{Role: string(chat.SpeakerModel), Content: reply})

	utils.RespondJSON(w, http.StatusOK, chat.ExchangeResponse{
		Response: chat.ExchangeReply{
			Response: reply,
			History:  chat.TrimHistory(history),
		},
	})
}
