package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"grievgo/backend/internal/account"
	"grievgo/backend/internal/ai"
	"grievgo/backend/internal/lifecycle"
	"grievgo/backend/internal/localization"
	"grievgo/backend/internal/storage"
	"grievgo/backend/internal/voicehub"
)

// Handler містить посилання на сервіси домену
type Handler struct {
	Accounts  *account.Service
	Lifecycle *lifecycle.Service
	Storage   *storage.Service
	Assistant *ai.Service
	Hub       *voicehub.ManagerService
	Localizer *localization.Localizer

	jwtSecret []byte
}

func NewHandler(accounts *account.Service, lc *lifecycle.Service, st *storage.Service, assistant *ai.Service, hub *voicehub.ManagerService, localizer *localization.Localizer, jwtSecret string) *Handler {
	return &Handler{
		Accounts:  accounts,
		Lifecycle: lc,
		Storage:   st,
		Assistant: assistant,
		Hub:       hub,
		Localizer: localizer,
		jwtSecret: []byte(jwtSecret),
	}
}

// langFrom picks the primary language tag out of an Accept-Language header.
func langFrom(header string) string {
	lang, _, _ := strings.Cut(header, ",")
	lang, _, _ = strings.Cut(strings.TrimSpace(lang), ";")
	lang, _, _ = strings.Cut(lang, "-")
	if lang = strings.ToLower(strings.TrimSpace(lang)); lang == "" {
		return localization.DefaultLang
	}
	return lang
}

// msg resolves one translation key against the request's language.
func (h *Handler) msg(c *gin.Context, key localization.Key) string {
	return h.Localizer.GetString(langFrom(c.GetHeader("Accept-Language")), key)
}
