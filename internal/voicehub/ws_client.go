package voicehub

import (
	"encoding/json"
	"log"
	"time"

	"grievgo/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// Documents arrive base64-encoded inside events, so the read limit is
	// far larger than a chat payload would need.
	maxMessageSize = 8 << 20
)

// WebSocketClient реалізує інтерфейс voicehub.Client
type WebSocketClient struct {
	Session *Session
	Conn    *websocket.Conn
	Hub     *ManagerService
	Send    chan models.VoiceEvent
}

// --- Реалізація методів інтерфейсу ---

func (c *WebSocketClient) GetSessionID() string                     { return c.Session.ID }
func (c *WebSocketClient) GetSession() *Session                     { return c.Session }
func (c *WebSocketClient) GetSendChannel() chan<- models.VoiceEvent { return c.Send }

// Run запускає 'pumps' для WebSocket
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close cancels the session and closes the Send channel (stopping writePump).
// Closing at any state discards pipeline state; no partial grievance is
// ever persisted from a cancelled session.
func (c *WebSocketClient) Close() {
	c.Session.Cancel()
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var ev models.VoiceEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			log.Printf("Error decoding JSON from session %s: %v", c.Session.ID, err)
			continue // Пропускаємо невірне повідомлення
		}

		c.Session.HandleEvent(ev)

		// A final state means the flow is over; drop the connection.
		if c.Session.State().IsFinal() {
			break
		}
	}
}

// writePump читає події з каналу Send і записує їх у WebSocket.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрито хабом, закриваємо з'єднання WS
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			dataToWrite, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Error encoding JSON for session %s: %v", c.Session.ID, err)
				continue
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(dataToWrite)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// Надсилаємо Ping для підтримки з'єднання активним
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
