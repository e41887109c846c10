package events

import (
	"fmt"

	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

const (
	TopicCartChanged       = "cart.changed"
	TopicProductAdded      = "catalog.product_added"
	TopicAdminLogin        = "admin.login"
	TopicAdminLogout       = "admin.logout"
	TopicChatTurnCompleted = "chat.turn_completed"
)

// Event is a domain notification published by the stores
type Event interface {
	Type() string
}

type Dispatcher interface {
	Dispatch(event Event) error
}

type CartChanged struct {
	Op        string `json:"op"`
	ProductID int64  `json:"product_id,omitempty"`
	Count     int    `json:"count"`
}

func (CartChanged) Type() string { return TopicCartChanged }

type ProductAdded struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
}

func (ProductAdded) Type() string { return TopicProductAdded }

type AdminLogin struct {
	Username string `json:"username"`
}

func (AdminLogin) Type() string { return TopicAdminLogin }

type AdminLogout struct{}

func (AdminLogout) Type() string { return TopicAdminLogout }

type ChatTurnCompleted struct {
	SessionID string `json:"session_id"`
	Failed    bool   `json:"failed"`
	ReplyLen  int    `json:"reply_len"`
}

func (ChatTurnCompleted) Type() string { return TopicChatTurnCompleted }

// Bus publishes events on an in-process EventBus, one topic per event type
type Bus struct {
	bus evbus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: evbus.New()}
}

func (b *Bus) Dispatch(event Event) error {
	if event == nil {
		return fmt.Errorf("nil event")
	}
	b.bus.Publish(event.Type(), event)
	return nil
}

// Subscribe registers fn for a single topic
func (b *Bus) Subscribe(topic string, fn func(Event)) error {
	if err := b.bus.Subscribe(topic, fn); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return nil
}

// LogEvents subscribes a zap logger to every known topic
func (b *Bus) LogEvents(logger *zap.Logger) error {
	topics := []string{
		TopicCartChanged,
		TopicProductAdded,
		TopicAdminLogin,
		TopicAdminLogout,
		TopicChatTurnCompleted,
	}
	for _, topic := range topics {
		err := b.Subscribe(topic, func(e Event) {
			logger.Debug("domain event", zap.String("topic", e.Type()), zap.Any("event", e))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Nop drops every event
type Nop struct{}

func (Nop) Dispatch(Event) error { return nil }

var (
	_ Dispatcher = (*Bus)(nil)
	_ Dispatcher = Nop{}
)
