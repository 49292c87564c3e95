package chat

// GreetRequest asks the endpoint for the persona's opening line.
type GreetRequest struct {
	UserName  string `json:"user_name"`
	ModelName string `json:"model_name"`
}

// GreetResponse carries the opening line.
type GreetResponse struct {
	Response string `json:"response"`
}

// ExchangeRequest submits one user message together with its context window.
type ExchangeRequest struct {
	UserName   string         `json:"user_name"`
	ModelName  string         `json:"model_name"`
	Characters string         `json:"characters"`
	Message    string         `json:"message"`
	History    []HistoryEntry `json:"history"`
}

// ExchangeResponse keeps the endpoint's double-wrapped reply shape:
// {"response": {"response": "...", "history": [...]}}.
type ExchangeResponse struct {
	Response ExchangeReply `json:"response"`
}

// ExchangeReply is the inner payload of ExchangeResponse.
type ExchangeReply struct {
	Response string         `json:"response"`
	History  []HistoryEntry `json:"history,omitempty"`
}
