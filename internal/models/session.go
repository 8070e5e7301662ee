package models

import (
	"sync"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one conversational exchange entry. Slot-fill fragments (a bare
// course code typed after a clarification prompt) are never stored as turns.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Intent is the coarse classification of what a message asks for.
type Intent string

const (
	IntentNone        Intent = ""
	IntentAccessIssue Intent = "IA_ACCESS_ISSUE"
	IntentGeneralFAQ  Intent = "GENERAL_FAQ"
)

// SlotKind names the single piece of information an outstanding
// clarification question is waiting for.
type SlotKind string

const (
	SlotNone         SlotKind = ""
	SlotCourseCode   SlotKind = "course_code"
	SlotPlatformKind SlotKind = "platform_kind"
)

// Session holds per-conversation state. It is owned by the session store;
// the conversation state machine borrows it under its mutex for the
// duration of one request.
type Session struct {
	mu sync.Mutex

	ID             string
	History        []Turn
	PendingSlot    SlotKind
	StoredIntent   Intent
	StoredPlatform Platform
	// PendingQuery is the conversational message that triggered the
	// clarification question, replayed against retrieval once the slot
	// resolves.
	PendingQuery string
	LastActivity time.Time
	CreatedAt    time.Time
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		LastActivity: now,
		CreatedAt:    now,
	}
}

// Lock serializes request processing for this session id.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// AwaitingSlot reports whether a clarification question is outstanding.
func (s *Session) AwaitingSlot() bool {
	return s.PendingSlot != SlotNone
}

// LastAssistantTurn returns the content of the most recent assistant turn.
func (s *Session) LastAssistantTurn() (string, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleAssistant {
			return s.History[i].Content, true
		}
	}
	return "", false
}

// AppendExchange records one resolved conversational exchange and trims
// history to at most maxTurns user/assistant pairs.
func (s *Session) AppendExchange(userMessage, assistantReply string, maxTurns int) {
	s.History = append(s.History,
		Turn{Role: RoleUser, Content: userMessage},
		Turn{Role: RoleAssistant, Content: assistantReply},
	)
	if limit := maxTurns * 2; limit > 0 && len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}

// ClearPending resets any outstanding clarification state.
func (s *Session) ClearPending() {
	s.PendingSlot = SlotNone
	s.StoredIntent = IntentNone
	s.StoredPlatform = PlatformNone
	s.PendingQuery = ""
}
