package service

import (
	"context"
	"strings"

	"market-khabri/internal/entity"
	"market-khabri/pkg/logger"
)

const ChatFailureMessage = "Couldn't process that question right now. Please try again."

// ChatService owns conversation state and delegates answering to the guardrail.
type ChatService interface {
	// Ask answers question within a session and returns the reply with the session id used.
	Ask(ctx context.Context, sessionID, question, symbol string) (reply string, usedSessionID string)
	// Converse answers the last user message of a client-held transcript.
	Converse(ctx context.Context, messages []entity.ChatTurn) string
	// NewSession clears sessionID, or starts a fresh session when it is empty.
	NewSession(sessionID string) string
}

// NewChatService creates a new ChatService.
func NewChatService(guardrail ChatGuardrailService, sessions *SessionStore, log *logger.Logger) ChatService {
	return &chatService{
		guardrail: guardrail,
		sessions:  sessions,
		logger:    log,
	}
}

type chatService struct {
	guardrail ChatGuardrailService
	sessions  *SessionStore
	logger    *logger.Logger
}

func (s *chatService) Ask(ctx context.Context, sessionID, question, symbol string) (string, string) {
	session := s.sessions.Get(sessionID)

	question = strings.TrimSpace(question)
	if question == "" {
		return EmptyQuestionMessage, session.ID
	}

	turn := entity.ChatTurn{Role: entity.ChatRoleUser, Content: question}
	session.Append(turn)

	reply, err := s.guardrail.Respond(ctx, session.Transcript(), symbol)
	if err != nil {
		session.Rollback(turn)
		s.logger.ErrorContext(ctx, "Chat answer failed",
			logger.StringField("session_id", session.ID),
			logger.ErrorField(err),
		)
		return ChatFailureMessage, session.ID
	}

	session.Append(entity.ChatTurn{Role: entity.ChatRoleAssistant, Content: reply})
	return reply, session.ID
}

func (s *chatService) Converse(ctx context.Context, messages []entity.ChatTurn) string {
	transcript := make([]entity.ChatTurn, 0, len(messages))
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		if m.Role != entity.ChatRoleUser && m.Role != entity.ChatRoleAssistant {
			continue
		}
		transcript = append(transcript, entity.ChatTurn{Role: m.Role, Content: content})
	}

	reply, err := s.guardrail.RespondWithKnowledgeBase(ctx, transcript)
	if err != nil {
		s.logger.ErrorContext(ctx, "Chat answer failed", logger.ErrorField(err))
		return ChatFailureMessage
	}
	return reply
}

func (s *chatService) NewSession(sessionID string) string {
	if sessionID == "" {
		return s.sessions.New().ID
	}
	return s.sessions.Reset(sessionID).ID
}
