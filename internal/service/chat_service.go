package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"campusbot/internal/models"
	"campusbot/internal/repository/memory"
	"campusbot/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Retriever is the retrieval router contract the state machine depends on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, collection models.Collection, platform models.Platform) (*models.RetrievalResult, error)
}

// ChatResult is the outward contract of one handled message.
type ChatResult struct {
	SessionID    string
	Reply        string
	SourceID     string
	Confidence   float64
	ArticleLink  string
	AwaitingSlot bool
	RetrievalMs  float64
	GenerationMs float64
}

const (
	sourceClarification  = "CLARIFICATION"
	sourceGenerationOnly = "LLM_ONLY"

	accessIssueHint = "The user is asking about Immediate Access digital course materials. " +
		"Do NOT suggest purchasing or renting physical textbooks unless the user explicitly asks. " +
		"Do NOT assume availability of print textbooks. " +
		"Only provide instructions for the specific platform mentioned in the official instructions."

	generationUnavailableReply = "I'm having trouble reaching our answer service right now. " +
		"Please try again in a moment."

	courseCodePrompt = "Happy to help with that! Could you share the course code " +
		"(for example, BIO101) so I can look up the right instructions?"

	courseCodeReprompt = "I still need the course code to look that up — it usually " +
		"looks like BIO101 or PSY200A. Could you share it?"

	platformKindReprompt = "Sorry, I didn't catch that. Are you trying to access a " +
		"textbook (eTextbook) or a courseware platform (like Connect, MindTap, or MyLab)?"

	multiPlatformPrompt = "I notice you mentioned multiple platforms. To give you the most " +
		"accurate troubleshooting steps, could you please clarify which platform you're " +
		"having trouble with? (e.g., McGraw Hill Connect, Cengage MindTap, etc.)"

	etextQuery = "eTextbook immediate access general instructions VitalSource Blackboard step-by-step"
)

// slot keywords matched structurally against a clarification reply; the
// raw message body is never stored as a slot value.
var (
	coursewareKindTerms = []string{"connect", "mindtap", "cnow", "mylab", "mastering", "platform", "courseware"}
	textbookKindTerms   = []string{"textbook", "etextbook", "etext", "ebook", "e-book"}
)

// ChatService is the per-session conversation state machine. It consumes
// one incoming message plus the session's current state, decides between
// the slot-fill and fresh-query branches, and produces the next session
// state together with a reply. All mutation of a session happens under
// that session's lock and is applied only after every fallible call
// succeeds, so an aborted request leaves the session in its pre-request
// state.
type ChatService struct {
	retriever       Retriever
	generator       Generator
	sessions        *memory.SessionStore
	maxHistoryTurns int
	logger          *zap.Logger
}

func NewChatService(retriever Retriever, generator Generator, sessions *memory.SessionStore, cfg *config.SessionConfig, logger *zap.Logger) *ChatService {
	return &ChatService{
		retriever:       retriever,
		generator:       generator,
		sessions:        sessions,
		maxHistoryTurns: cfg.MaxHistoryTurns,
		logger:          logger,
	}
}

// HandleMessage processes one inbound message for a session. A missing
// session id gets a synthesized one, giving the caller an ephemeral
// session instead of a shared global default.
func (s *ChatService) HandleMessage(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("message must not be empty")
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	var result *ChatResult
	err := s.sessions.WithSession(sessionID, func(session *models.Session) error {
		r, err := s.process(ctx, session, message)
		if err != nil {
			return err
		}
		r.SessionID = sessionID
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// process evaluates the branch against the session state before anything
// is appended to history.
func (s *ChatService) process(ctx context.Context, session *models.Session, message string) (*ChatResult, error) {
	switch session.PendingSlot {
	case models.SlotCourseCode:
		return s.resolveCourseCode(ctx, session, message)
	case models.SlotPlatformKind:
		return s.resolvePlatformKind(ctx, session, message)
	default:
		result, _, err := s.handleFresh(ctx, session, message)
		return result, err
	}
}

// resolveCourseCode handles a message expected to carry a course code.
// The slot pattern is checked before topic-switch signals: a reply that
// carries a course code is always a slot fill.
func (s *ChatService) resolveCourseCode(ctx context.Context, session *models.Session, message string) (*ChatResult, error) {
	code, ok := ExtractCourseCode(message)
	if !ok {
		if IsTopicSwitch(message, session.StoredIntent) {
			// The pending slot is released only once the fresh path commits;
			// an aborted switch keeps the clarification open.
			result, _, err := s.handleFresh(ctx, session, message)
			return result, err
		}
		// Malformed slot input: re-prompt without advancing state.
		return &ChatResult{
			Reply:        courseCodeReprompt,
			SourceID:     sourceClarification,
			AwaitingSlot: true,
		}, nil
	}

	intent := session.StoredIntent
	platform := session.StoredPlatform
	pendingQuery := session.PendingQuery

	result, ok, err := s.answer(ctx, session, answerInput{
		userTurn: pendingQuery,
		query:    pendingQuery + " " + code,
		intent:   intent,
		platform: platform,
	})
	if err != nil {
		return nil, err
	}
	if ok {
		// Slot resolved: the clarification exchange is consumed here; only
		// the conversational turns were appended by answer.
		session.ClearPending()
		s.logger.Debug("Course code slot resolved",
			zap.String("session_id", session.ID),
			zap.String("course_code", code),
		)
	}
	return result, nil
}

// resolvePlatformKind handles a reply to a "textbook or courseware?"
// clarification.
func (s *ChatService) resolvePlatformKind(ctx context.Context, session *models.Session, message string) (*ChatResult, error) {
	normalized := strings.ToLower(message)
	pendingQuery := session.PendingQuery

	input := answerInput{
		userTurn: pendingQuery,
		intent:   models.IntentAccessIssue,
	}

	switch {
	case containsAny(normalized, coursewareKindTerms):
		// A direct platform mention in the reply wins over the stashed
		// publisher ("it's mindtap" after a McGraw prompt).
		if p, ambiguous := DetectPlatform(message); p != models.PlatformNone && !ambiguous {
			input.platform = p
		} else {
			input.platform = session.StoredPlatform
		}
		input.query = pendingQuery
	case containsAny(normalized, textbookKindTerms):
		input.platform = models.PlatformNone
		input.query = etextQuery
	default:
		if IsTopicSwitch(message, session.StoredIntent) {
			result, _, err := s.handleFresh(ctx, session, message)
			return result, err
		}
		return &ChatResult{
			Reply:        platformKindReprompt,
			SourceID:     sourceClarification,
			AwaitingSlot: true,
		}, nil
	}

	result, ok, err := s.answer(ctx, session, input)
	if err != nil {
		return nil, err
	}
	if ok {
		session.ClearPending()
	}
	return result, nil
}

// handleFresh is the IDLE branch: classify, possibly ask a clarification
// question, otherwise retrieve and generate. It is also the target of a
// topic switch away from an open clarification, so any stale pending state
// is replaced or cleared only when the new transition commits; the ok
// return reports that commit.
func (s *ChatService) handleFresh(ctx context.Context, session *models.Session, message string) (*ChatResult, bool, error) {
	if IsGreeting(message) {
		result, ok, err := s.answer(ctx, session, answerInput{
			userTurn:      message,
			query:         message,
			skipRetrieval: true,
		})
		if ok {
			session.ClearPending()
		}
		return result, ok, err
	}

	platform, ambiguous := DetectPlatform(message)
	if ambiguous {
		session.PendingSlot = models.SlotPlatformKind
		session.StoredIntent = models.IntentAccessIssue
		session.StoredPlatform = models.PlatformNone
		session.PendingQuery = message
		return &ChatResult{
			Reply:        multiPlatformPrompt,
			SourceID:     sourceClarification,
			AwaitingSlot: true,
		}, true, nil
	}

	if publisher, needsKind := ambiguousPublisherQuery(message); needsKind {
		session.PendingSlot = models.SlotPlatformKind
		session.StoredIntent = models.IntentAccessIssue
		session.StoredPlatform = publisher
		session.PendingQuery = message
		return &ChatResult{
			Reply:        publisherClarification(publisher),
			SourceID:     sourceClarification,
			AwaitingSlot: true,
		}, true, nil
	}

	intent := DetectIntent(message)

	if intent == models.IntentAccessIssue {
		if _, ok := ExtractCourseCode(message); !ok {
			session.PendingSlot = models.SlotCourseCode
			session.StoredIntent = intent
			session.StoredPlatform = platform
			session.PendingQuery = message
			return &ChatResult{
				Reply:        courseCodePrompt,
				SourceID:     sourceClarification,
				AwaitingSlot: true,
			}, true, nil
		}
	}

	result, ok, err := s.answer(ctx, session, answerInput{
		userTurn:    message,
		query:       message,
		intent:      intent,
		platform:    platform,
		reformulate: true,
	})
	if ok {
		session.ClearPending()
	}
	return result, ok, err
}

type answerInput struct {
	// userTurn is the conversational message appended to history; for a
	// resolved slot this is the original question, not the slot fragment.
	userTurn      string
	query         string
	intent        models.Intent
	platform      models.Platform
	reformulate   bool
	skipRetrieval bool
}

// answer runs the retrieval and generation path and applies the history
// transition only once both have produced a reply. ok reports whether the
// transition was applied; a generation failure returns the retry reply
// with the session untouched.
func (s *ChatService) answer(ctx context.Context, session *models.Session, input answerInput) (*ChatResult, bool, error) {
	result := &ChatResult{SourceID: sourceGenerationOnly}

	query := input.query
	if input.reformulate {
		query = ReformulateQuery(query, session)
	}

	var grounding string
	if !input.skipRetrieval {
		retrievalStart := time.Now()
		retrieval, err := s.retrieve(ctx, query, input.intent, input.platform)
		result.RetrievalMs = float64(time.Since(retrievalStart).Microseconds()) / 1000
		switch {
		case err == nil:
			grounding = retrieval.Context
			result.SourceID = retrieval.SourceID
			result.Confidence = retrieval.Score
			result.ArticleLink = retrieval.ArticleLink
		case errors.Is(err, ErrNoMatch):
			// Valid outcome: generation-only reply.
		case ctx.Err() != nil:
			return nil, false, ctx.Err()
		default:
			// Retrieval failures are recovered locally, never surfaced.
			s.logger.Warn("Retrieval failed, continuing without grounding",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
	}

	hint := ""
	if input.intent == models.IntentAccessIssue {
		hint = accessIssueHint
	}

	generationStart := time.Now()
	reply, err := s.generator.Generate(ctx, &GenerateRequest{
		SystemHint:       hint,
		GroundingContext: grounding,
		History:          session.History,
		Message:          input.userTurn,
	})
	result.GenerationMs = float64(time.Since(generationStart).Microseconds()) / 1000
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		// Generation is the only failure class surfaced to the user, as a
		// retry message. The session keeps its pre-request state.
		s.logger.Error("Generation failed",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return &ChatResult{
			Reply:        generationUnavailableReply,
			SourceID:     sourceGenerationOnly,
			AwaitingSlot: session.AwaitingSlot(),
		}, false, nil
	}

	// Transition applies atomically here, after every fallible call.
	session.AppendExchange(input.userTurn, reply, s.maxHistoryTurns)
	result.Reply = reply
	return result, true, nil
}

func (s *ChatService) retrieve(ctx context.Context, query string, intent models.Intent, platform models.Platform) (*models.RetrievalResult, error) {
	if intent == models.IntentAccessIssue {
		return s.retriever.Retrieve(ctx, query, models.CollectionInstructions, platform)
	}
	return s.retriever.Retrieve(ctx, query, models.CollectionAuto, platform)
}

// ReformulateQuery folds recent conversation context into an
// under-specified follow-up: a short deictic message gets a trailing
// excerpt of the most recent assistant turn prepended. Only the retrieval
// query changes, never the text stored in history.
func ReformulateQuery(message string, session *models.Session) string {
	if !needsContext(message) {
		return message
	}
	lastAssistant, ok := session.LastAssistantTurn()
	if !ok {
		return message
	}
	excerpt := trailingExcerpt(lastAssistant, 200)
	return excerpt + "\n" + message
}

// trailingExcerpt keeps at most maxLen trailing bytes of text, advancing
// the cut to the next rune boundary so the excerpt stays valid UTF-8.
func trailingExcerpt(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxLen {
		return text
	}
	cut := len(text) - maxLen
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	return text[cut:]
}

// ambiguousPublisherQuery reports whether the message names a publisher
// without saying which product kind (textbook vs courseware) is meant.
func ambiguousPublisherQuery(message string) (models.Platform, bool) {
	normalized := strings.ToLower(message)

	publishers := []struct {
		platform models.Platform
		name     string
		kinds    []string
	}{
		{models.PlatformMcGrawHill, "mcgraw", []string{"connect"}},
		{models.PlatformCengage, "cengage", []string{"mindtap", "cnow"}},
		{models.PlatformPearson, "pearson", []string{"mylab", "mastering"}},
	}

	for _, p := range publishers {
		if !strings.Contains(normalized, p.name) {
			continue
		}
		if containsAny(normalized, p.kinds) || containsAny(normalized, textbookKindTerms) {
			return p.platform, false
		}
		return p.platform, true
	}
	return models.PlatformNone, false
}

func publisherClarification(publisher models.Platform) string {
	switch publisher {
	case models.PlatformMcGrawHill:
		return "I can help you with McGraw Hill! To give you the most accurate instructions, " +
			"could you please specify: Are you trying to access a McGraw Hill textbook " +
			"or McGraw Hill Connect?"
	case models.PlatformCengage:
		return "I can help you with Cengage! To give you the most accurate instructions, " +
			"could you please specify: Are you trying to access a Cengage textbook " +
			"or Cengage MindTap (also called cnowv2)?"
	case models.PlatformPearson:
		return "I can help you with Pearson! To give you the most accurate instructions, " +
			"could you please specify: Are you trying to access a Pearson textbook " +
			"or Pearson MyLab/Mastering?"
	default:
		return "I can help you with that! Could you please specify what type of " +
			"access you need (textbook or platform/courseware)?"
	}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
