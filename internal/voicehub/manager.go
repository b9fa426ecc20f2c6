package voicehub

import (
	"log"

	"grievgo/backend/internal/ai"
)

// ManagerService owns all live voice-intake sessions. Clients register and
// unregister through channels so all map mutation happens on the single
// Run goroutine.
type ManagerService struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	Parser  Parser
	Creator Creator
}

// NewManagerService creates the hub over the AI parser and the lifecycle
// engine's creation entry point.
func NewManagerService(assistant *ai.Service, creator Creator) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Parser:       assistant,
		Creator:      creator,
	}
}

// Run запускає головний диспетчер: реєстрація та зняття сесій.
func (m *ManagerService) Run() {
	log.Println("Voice hub started.")
	for {
		select {
		case client := <-m.RegisterCh:
			m.Clients[client.GetSessionID()] = client
			log.Printf("Voice session %s registered (%d active)", client.GetSessionID(), len(m.Clients))

		case client := <-m.UnregisterCh:
			if _, ok := m.Clients[client.GetSessionID()]; ok {
				delete(m.Clients, client.GetSessionID())
				client.Close()
				log.Printf("Voice session %s unregistered (%d active)", client.GetSessionID(), len(m.Clients))
			}
		}
	}
}
