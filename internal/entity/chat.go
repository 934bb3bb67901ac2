package entity

// ChatRole is the author of a ChatTurn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatTurn is one message in a conversation transcript.
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// QueryType is the triage class of a chat question.
type QueryType string

const (
	QueryTypeRealStock QueryType = "REAL_STOCK"
	QueryTypeFakeStock QueryType = "FAKE_STOCK"
	QueryTypeOffTopic  QueryType = "OFF_TOPIC"
)

// TriageResult is the classification of a question before it is answered.
type TriageResult struct {
	QueryType QueryType `json:"query_type"`
	Symbol    string    `json:"symbol,omitempty"`
}

// ParseQueryType maps a model label onto a QueryType. Anything unknown is OFF_TOPIC.
func ParseQueryType(s string) QueryType {
	switch QueryType(s) {
	case QueryTypeRealStock, QueryTypeFakeStock:
		return QueryType(s)
	}
	return QueryTypeOffTopic
}
