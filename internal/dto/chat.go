package dto

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID    string  `json:"session_id"`
	Reply        string  `json:"reply"`
	Source       string  `json:"source"`
	ArticleLink  *string `json:"article_link"`
	Confidence   float64 `json:"confidence"`
	AwaitingSlot bool    `json:"awaiting_slot"`

	// Performance metrics for model comparison
	RetrievalTimeMs float64 `json:"retrieval_time_ms"`
	LLMTimeMs       float64 `json:"llm_time_ms"`
	TotalTimeMs     float64 `json:"total_time_ms"`
}

type SessionSummary struct {
	ID            string  `json:"id"`
	HistoryLength int     `json:"history_length"`
	AwaitingSlot  bool    `json:"awaiting_slot"`
	LastActivity  string  `json:"last_activity"`
	AgeMinutes    float64 `json:"age_minutes"`
}

type SessionStatsResponse struct {
	ActiveSessions int              `json:"active_sessions"`
	Sessions       []SessionSummary `json:"sessions"`
}
