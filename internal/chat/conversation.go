package chat

import (
	"adaptive/internal/logging"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when a send is already in flight.
	ErrBusy = errors.New("a message is already being sent")
	// ErrEmpty is returned for blank messages.
	ErrEmpty = errors.New("message is empty")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("conversation closed")
)

// ExchangeState is the phase of one message round trip.
type ExchangeState int

const (
	Pending ExchangeState = iota
	Resolved
	Failed
)

func (s ExchangeState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Exchange records one send from user message to reply.
type Exchange struct {
	ID       string
	Message  string
	Context  Context
	State    ExchangeState
	Reply    string
	Err      error
	Duration time.Duration
}

// Conversation owns the transcript and allows one exchange at a time.
type Conversation struct {
	relay      Relay
	transcript *Transcript

	mu      sync.Mutex
	pending *Exchange
	closed  bool

	done   context.Context
	cancel context.CancelFunc
}

// NewConversation creates a conversation that sends through relay.
func NewConversation(relay Relay) *Conversation {
	done, cancel := context.WithCancel(context.Background())
	return &Conversation{
		relay:      relay,
		transcript: NewTranscript(),
		done:       done,
		cancel:     cancel,
	}
}

// Transcript returns the conversation's transcript.
func (c *Conversation) Transcript() *Transcript {
	return c.transcript
}

// Pending reports whether an exchange is in flight.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Send appends the user message, waits for the relay and appends the reply or
// FallbackMessage. Relay failures are recorded on the returned Exchange, not
// returned as errors. A Send while another is pending returns ErrBusy and does
// not touch the transcript.
func (c *Conversation) Send(ctx context.Context, message string, cx Context) (*Exchange, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmpty
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.pending != nil {
		id := c.pending.ID
		c.mu.Unlock()
		logging.ChatDebug("Send rejected: exchange %s pending", id)
		return nil, ErrBusy
	}
	ex := &Exchange{ID: uuid.NewString(), Message: message, Context: cx, State: Pending}
	c.pending = ex
	c.transcript.Append(RoleUser, message)
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.done, cancel)
	defer stop()

	timer := logging.StartTimer(logging.CategoryChat, "exchange")
	reply, err := c.relay.Send(ctx, message, cx)
	ex.Duration = timer.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil

	if c.closed {
		ex.State = Failed
		ex.Err = ErrClosed
		return ex, nil
	}
	if err != nil {
		logging.ChatWarn("Exchange %s failed: %v", ex.ID, err)
		ex.State = Failed
		ex.Err = err
		ex.Reply = FallbackMessage
		c.transcript.Append(RoleAssistant, FallbackMessage)
		return ex, nil
	}

	ex.State = Resolved
	ex.Reply = reply
	c.transcript.Append(RoleAssistant, reply)
	logging.Chat("Exchange %s resolved in %v (%d chars)", ex.ID, ex.Duration, len(reply))
	return ex, nil
}

// Close aborts any in-flight exchange. Its result is discarded.
func (c *Conversation) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}
