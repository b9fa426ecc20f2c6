package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"grievgo/backend/internal/models"
	"grievgo/backend/internal/voicehub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Дозволяє з'єднання з будь-якого домену. У продакшені налаштувати!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeVoiceWebSocket оновлює HTTP-з'єднання до WebSocket для голосової подачі
func (h *Handler) ServeVoiceWebSocket(c *gin.Context) {
	// Токен передається як query-параметр, бо браузерний WebSocket
	// не дозволяє власні заголовки
	tokenString := c.Query("token")
	if tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenString = authHeader[7:]
		}
	}
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	claims, err := h.validateToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}
	if claims.Role != models.RoleCitizen {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Citizen account required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	sessionID := uuid.NewString()
	send := make(chan models.VoiceEvent, 256)

	// 1. Створення нового клієнта з власною голосовою сесією
	client := &voicehub.WebSocketClient{
		Hub:     h.Hub,
		Conn:    conn,
		Send:    send,
		Session: voicehub.NewSession(sessionID, claims.Name, claims.Email, h.Hub.Parser, h.Hub.Creator, send),
	}

	// 2. Реєстрація клієнта в Voice Hub
	h.Hub.RegisterCh <- client

	// 3. Запуск клієнта (client.Run() сам запустить необхідні goroutines)
	client.Run()
}
