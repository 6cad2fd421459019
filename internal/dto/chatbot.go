package dto

// ChatQueryRequest is the body of both chatbot endpoints. SessionID is
// optional; without it the conversation has no memory.
type ChatQueryRequest struct {
	Query     string `json:"query" validate:"required"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatAnswerResponse struct {
	Success bool           `json:"success"`
	Answer  string         `json:"answer,omitempty"`
	Error   string         `json:"error,omitempty"`
	Debug   *SemanticDebug `json:"_debug,omitempty"`
}

// SemanticDebug mirrors the match telemetry of the semantic endpoint.
type SemanticDebug struct {
	Matches       int     `json:"matches"`
	TopSimilarity float32 `json:"top_similarity"`
	Generation    int64   `json:"generation"`
}

type CacheRebuildResponse struct {
	Success    bool   `json:"success"`
	Indexed    int    `json:"indexed"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Generation int64  `json:"generation"`
	Error      string `json:"error,omitempty"`
}
