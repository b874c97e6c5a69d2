package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"aivaidya-be/pkg/triage"

	"github.com/google/uuid"
)

const (
	Greeting = "Hi! I'm AIVaidya. Describe your symptoms and optionally add a photo. I'll suggest likely conditions and which specialist to consult. This is not medical advice."

	NoTextProvided = "No text provided"

	msgUnavailable = "Sorry, I could not process that right now."
)

var ErrNothingToSend = errors.New("chat: nothing to send")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is a reference to an image sent with a user message; the bytes are not kept.
type Attachment struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Size     int    `json:"size"`
}

type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Failed      bool         `json:"failed,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Diagnoser is the backend a session talks to. APIClient is the HTTP implementation.
type Diagnoser interface {
	Diagnose(ctx context.Context, symptoms string, images []triage.Image) (json.RawMessage, error)
}

// Session is one conversation. It is safe for concurrent use: overlapping sends are
// allowed and their replies land in completion order.
type Session struct {
	backend Diagnoser

	mu       sync.Mutex
	messages []Message
	staged   []triage.Image
	pending  int
}

func NewSession(backend Diagnoser) *Session {
	return &Session{
		backend:  backend,
		messages: []Message{newMessage(RoleAssistant, Greeting)},
	}
}

func newMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// Stage replaces the staged images, keeping at most triage.MaxImages.
func (s *Session) Stage(images ...triage.Image) {
	if len(images) > triage.MaxImages {
		images = images[:triage.MaxImages]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = append([]triage.Image(nil), images...)
}

func (s *Session) ClearStaged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
}

func (s *Session) Staged() []triage.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]triage.Image(nil), s.staged...)
}

// Messages returns a copy of the history.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Loading reports whether any send is still in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Send posts text plus the staged images. The user message is appended right away and
// exactly one assistant message follows once the backend answers or fails; that reply
// is returned. Staged images are consumed by the send.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	images := s.staged
	if trimmed == "" && len(images) == 0 {
		s.mu.Unlock()
		return Message{}, ErrNothingToSend
	}

	userMsg := newMessage(RoleUser, trimmed)
	for _, img := range images {
		userMsg.Attachments = append(userMsg.Attachments, Attachment{
			Name:     img.Name,
			MIMEType: img.MIMEType,
			Size:     len(img.Data),
		})
	}
	s.messages = append(s.messages, userMsg)
	s.staged = nil
	s.pending++
	s.mu.Unlock()

	symptoms := trimmed
	if symptoms == "" {
		symptoms = NoTextProvided
	}

	var reply Message
	data, err := s.backend.Diagnose(ctx, symptoms, images)
	if err != nil {
		text := err.Error()
		if text == "" {
			text = msgUnavailable
		}
		reply = newMessage(RoleAssistant, text)
		reply.Failed = true
	} else {
		reply = newMessage(RoleAssistant, prettyJSON(data))
	}

	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.pending--
	s.mu.Unlock()

	return reply, nil
}

// prettyJSON renders a verdict for display; a bare JSON string is shown unquoted.
func prettyJSON(data json.RawMessage) string {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		return str
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
