package bot

import (
	"sync"

	"github.com/wyzo-ops/orderbot-backend/internal/models"
)

// State identifies the current dialogue step of a conversation.
type State int

const (
	StateIdle State = iota
	StateAwaitEmail
	StateAwaitPassword
	StateAwaitOrderID
	StateAwaitOTP
)

func (s State) String() string {
	switch s {
	case StateAwaitEmail:
		return "await_email"
	case StateAwaitPassword:
		return "await_password"
	case StateAwaitOrderID:
		return "await_order_id"
	case StateAwaitOTP:
		return "await_otp"
	default:
		return "idle"
	}
}

// Conversation holds the ephemeral scratch state for one chat. It is
// distinct from the durable session store: scratch is cleared on auth
// failure, logout and unexpected errors, but survives /cancel.
type Conversation struct {
	ChatID        int64
	State         State
	Email         string
	Authenticated bool
	Order         *models.Order
	CustomerPhone string

	// mu serializes message handling within this conversation.
	// Unrelated chats proceed concurrently.
	mu sync.Mutex
}

// Reset clears all scratch state and terminates the dialogue.
func (c *Conversation) Reset() {
	c.State = StateIdle
	c.Email = ""
	c.Authenticated = false
	c.Order = nil
	c.CustomerPhone = ""
}

// ConversationManager tracks conversations keyed by chat id.
type ConversationManager struct {
	conversations map[int64]*Conversation
	mu            sync.RWMutex
}

// NewConversationManager creates a new conversation manager.
func NewConversationManager() *ConversationManager {
	return &ConversationManager{
		conversations: make(map[int64]*Conversation),
	}
}

// Get returns the conversation for a chat, creating it if needed.
func (m *ConversationManager) Get(chatID int64) *Conversation {
	m.mu.RLock()
	conv, exists := m.conversations[chatID]
	m.mu.RUnlock()
	if exists {
		return conv
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Check again in case another goroutine created it while we waited.
	if conv, exists = m.conversations[chatID]; exists {
		return conv
	}

	conv = &Conversation{ChatID: chatID}
	m.conversations[chatID] = conv
	return conv
}

// ActiveCount returns the number of conversations mid-dialogue (for monitoring).
func (m *ConversationManager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, conv := range m.conversations {
		if conv.State != StateIdle {
			count++
		}
	}
	return count
}
