package dto

import "market-khabri/internal/entity"

// ChatRequest is the body of POST /api/chat. When Messages is set the
// stateless knowledge-base variant answers over that transcript; otherwise the
// question is answered inside the server-side session identified by SessionID.
type ChatRequest struct {
	Question      string            `json:"question"`
	CompanySymbol string            `json:"company_symbol,omitempty"`
	SessionID     string            `json:"session_id,omitempty"`
	Messages      []entity.ChatTurn `json:"messages,omitempty"`
}

// ChatResponse is the reply to a chat request.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id,omitempty"`
}

// NewChatRequest is the optional body of POST /api/chat/new.
type NewChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// NewChatResponse confirms a fresh transcript.
type NewChatResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}
