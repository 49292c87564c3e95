package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/daily-hug/internal/model/persona"
	"github.com/zhouzirui/daily-hug/pkg/utils"
)

// Handler 性格标签的HTTP处理器
type Handler struct {
	traits persona.Store
}

// New 创建性格标签处理器
func New(traits persona.Store) *Handler {
	return &Handler{
		traits: traits,
	}
}

// RegisterRoutes 注册性格标签相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/traits", h.handleListTraits)
}

// handleListTraits 列出全部可选标签及其颜色
func (h *Handler) handleListTraits(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"traits":    h.traits.List(),
		"maxTraits": persona.MaxTraits,
	})
}
