package bot

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/wyzo-ops/orderbot-backend/internal/services"
	"github.com/wyzo-ops/orderbot-backend/internal/storage"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether the input looks like an email address.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Reply is one outbound chat message.
type Reply struct {
	Text     string
	Markdown bool
}

const authorizedMenu = "You can:\n" +
	"1. Send me an order number to get the order details\n" +
	"2. Use /logout to end the session\n" +
	"3. Use /cancel to cancel the current operation\n\n" +
	"Please enter an order number:"

const sessionExpiredText = "⚠️ Your session has expired. Please log in again with /start"

// Dialogue sequences the login → order lookup → OTP conversation.
// Callers must hold the conversation's lock for the duration of a call.
type Dialogue struct {
	store storage.Store
	api   *services.APIClient
	convs *ConversationManager
}

// NewDialogue creates a new dialogue controller.
func NewDialogue(store storage.Store, api *services.APIClient) *Dialogue {
	return &Dialogue{
		store: store,
		api:   api,
		convs: NewConversationManager(),
	}
}

// Conversations exposes the conversation manager for the transport and monitoring.
func (d *Dialogue) Conversations() *ConversationManager {
	return d.convs
}

// Start is the /start entry point. A user with a stored session skips
// straight to order lookup; everyone else begins at the email prompt.
func (d *Dialogue) Start(conv *Conversation) []Reply {
	token, err := d.store.GetToken(conv.ChatID)
	if err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
		log.Printf("⚠️ Failed to load session for %d: %v", conv.ChatID, err)
	}
	if err == nil && token != "" {
		log.Printf("User %d already has a valid session", conv.ChatID)
		conv.State = StateAwaitOrderID
		return []Reply{{Text: "✅ You are already logged in!\n\n" + authorizedMenu}}
	}

	conv.Reset()
	conv.State = StateAwaitEmail
	return []Reply{{Text: "👋 Welcome to the order management bot!\n\n" +
		"Please enter your email address to begin:"}}
}

// HandleMessage dispatches free text to the handler for the current state.
func (d *Dialogue) HandleMessage(conv *Conversation, text string) []Reply {
	switch conv.State {
	case StateAwaitEmail:
		return d.handleEmail(conv, strings.TrimSpace(text))
	case StateAwaitPassword:
		return d.handlePassword(conv, text)
	case StateAwaitOrderID:
		return d.handleOrderID(conv, strings.TrimSpace(text))
	case StateAwaitOTP:
		return d.handleOTP(conv, strings.TrimSpace(text))
	default:
		return []Reply{{Text: "Use /start to begin."}}
	}
}

func (d *Dialogue) handleEmail(conv *Conversation, email string) []Reply {
	if !IsValidEmail(email) {
		log.Printf("Invalid email format from user %d", conv.ChatID)
		return []Reply{{Text: "❌ Invalid email format. Please enter a valid email address:"}}
	}

	conv.Email = email
	conv.State = StateAwaitPassword
	return []Reply{{Text: "📧 Email accepted!\nPlease enter your password:"}}
}

func (d *Dialogue) handlePassword(conv *Conversation, password string) []Reply {
	token, err := d.api.Authenticate(conv.Email, password)
	if err != nil {
		log.Printf("Authentication failed for user %d: %v", conv.ChatID, err)
		conv.Reset()
		return []Reply{{Text: fmt.Sprintf("❌ Authentication failed: %s\nPlease try again with /start", apiMessage(err))}}
	}

	if err := d.store.SaveToken(conv.ChatID, token); err != nil {
		log.Printf("🔥 Failed to save session for %d: %v", conv.ChatID, err)
		conv.Reset()
		return []Reply{{Text: "❌ An unexpected error occurred. Please try again with /start"}}
	}

	conv.Authenticated = true
	conv.State = StateAwaitOrderID
	log.Printf("User %d authenticated successfully", conv.ChatID)
	return []Reply{{Text: "✅ Authentication successful!\n\n" + authorizedMenu}}
}

func (d *Dialogue) handleOrderID(conv *Conversation, orderID string) []Reply {
	token, err := d.store.GetToken(conv.ChatID)
	if err != nil {
		if !errors.Is(err, storage.ErrTokenNotFound) {
			log.Printf("⚠️ Failed to load session for %d: %v", conv.ChatID, err)
		}
		conv.Reset()
		return []Reply{{Text: sessionExpiredText}}
	}

	order, err := d.api.GetOrder(orderID, token)
	if err != nil {
		if services.IsAuthError(err) {
			log.Printf("Session expired for user %d", conv.ChatID)
			if derr := d.store.DeleteToken(conv.ChatID); derr != nil {
				log.Printf("⚠️ Failed to delete session for %d: %v", conv.ChatID, derr)
			}
			conv.Reset()
			return []Reply{{Text: sessionExpiredText}}
		}
		log.Printf("Failed to fetch order %s for user %d: %v", orderID, conv.ChatID, err)
		return []Reply{{Text: fmt.Sprintf("❌ Error fetching the order: %s\nPlease try another order number:", apiMessage(err))}}
	}

	phone := order.CustomerPhone()
	if phone == "" {
		log.Printf("No customer phone in order %s", orderID)
		return []Reply{{Text: "❌ Couldn't find the customer's phone number in the order details.\nPlease try another order number:"}}
	}

	conv.Order = order
	conv.CustomerPhone = phone

	// The summary is always delivered, even when OTP issuance fails below.
	replies := []Reply{{Text: FormatOrderDetails(order), Markdown: true}}

	if err := d.api.CreateOTP(phone); err != nil {
		log.Printf("Failed to create OTP for phone %s: %v", phone, err)
		return append(replies, Reply{Text: fmt.Sprintf("❌ Failed to send the one-time code: %s\nPlease try another order number:", apiMessage(err))})
	}

	conv.State = StateAwaitOTP
	return append(replies, Reply{Text: "📱 A one-time code (OTP) was sent to the customer's phone.\nPlease enter the one-time code:"})
}

func (d *Dialogue) handleOTP(conv *Conversation, code string) []Reply {
	phone := conv.CustomerPhone
	if phone == "" {
		log.Printf("🔥 Customer phone missing from scratch state for user %d", conv.ChatID)
		conv.State = StateAwaitOrderID
		return []Reply{{Text: "❌ Session error. Please try again with a new order number:"}}
	}

	if err := d.api.VerifyOTP(phone, code); err != nil {
		log.Printf("Failed to verify OTP for phone %s: %v", phone, err)
		return []Reply{{Text: fmt.Sprintf("❌ Invalid one-time code: %s\nPlease try again with the correct code:", apiMessage(err))}}
	}

	conv.State = StateAwaitOrderID
	return []Reply{{Text: "✅ Code verified successfully!\n\nEnter another order number:"}}
}

// Logout deletes the durable session and clears scratch state.
func (d *Dialogue) Logout(conv *Conversation) []Reply {
	log.Printf("Logout requested by user %d", conv.ChatID)
	if err := d.store.DeleteToken(conv.ChatID); err != nil {
		log.Printf("⚠️ Failed to delete session for %d: %v", conv.ChatID, err)
	}
	conv.Reset()
	return []Reply{{Text: "👋 You have been logged out.\nUse /start to log in again."}}
}

// Cancel terminates the current operation. Scratch state and the
// stored session are intentionally preserved: cancelling a lookup must
// never undo an established login.
func (d *Dialogue) Cancel(conv *Conversation) []Reply {
	log.Printf("Operation cancelled by user %d", conv.ChatID)
	conv.State = StateIdle
	return []Reply{{Text: "❌ Operation cancelled.\nUse /start to begin again."}}
}

// apiMessage extracts the server message from a typed API error.
func apiMessage(err error) string {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
