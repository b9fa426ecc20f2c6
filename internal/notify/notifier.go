// Package notify pushes grievance lifecycle alerts to per-department
// Telegram chats. It consumes the Redis Pub/Sub event feed published by the
// lifecycle engine, so a lost notification never affects the grievance
// itself.
package notify

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"grievgo/backend/internal/localization"
	"grievgo/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
)

// EventSubscriber provides the grievance event feed (storage.Service does).
type EventSubscriber interface {
	SubscribeGrievanceEvents() *redis.PubSub
}

// Service listens for grievance events and notifies department chats.
type Service struct {
	BotAPI     *tgbotapi.BotAPI
	Localizer  *localization.Localizer
	Subscriber EventSubscriber
	// DeptChats maps a department name to its Telegram chat id.
	DeptChats map[string]int64
	Lang      string
}

// NewService creates a notifier bound to one bot token.
func NewService(token string, subscriber EventSubscriber, localizer *localization.Localizer, deptChats map[string]int64) (*Service, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Notifier authorized on account %s", bot.Self.UserName)

	return &Service{
		BotAPI:     bot,
		Localizer:  localizer,
		Subscriber: subscriber,
		DeptChats:  deptChats,
		Lang:       localization.DefaultLang,
	}, nil
}

// Run consumes the event feed until the subscription closes.
func (s *Service) Run() {
	pubsub := s.Subscriber.SubscribeGrievanceEvents()
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var ev models.GrievanceEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("Error unmarshalling grievance event: %v", err)
			continue
		}
		s.handle(ev)
	}
}

func (s *Service) handle(ev models.GrievanceEvent) {
	chatID, ok := s.DeptChats[ev.Organization]
	if !ok {
		return // department without a configured chat
	}

	text := FormatEvent(s.Localizer, s.Lang, ev)
	if text == "" {
		return
	}

	if _, err := s.BotAPI.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Error sending notification for %s: %v", ev.GrievanceID, err)
	}
}

// ParseDeptChats parses the DEPT_CHAT_IDS env format:
// "Electricity Board=-100123,Water Supply Department=-100456".
// Malformed entries are skipped with a warning.
func ParseDeptChats(raw string) map[string]int64 {
	out := make(map[string]int64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, idStr, ok := strings.Cut(pair, "=")
		if !ok {
			log.Printf("WARNING: skipping malformed department chat mapping %q", pair)
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			log.Printf("WARNING: skipping department chat mapping %q: %v", pair, err)
			continue
		}
		out[strings.TrimSpace(name)] = id
	}
	return out
}
