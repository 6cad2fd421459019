package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// QueryAnalyzer extracts an intent and entity slots from free-form text.
// Best effort; a failed or malformed analysis degrades to the general
// intent rather than aborting the query.
type QueryAnalyzer interface {
	Analyze(ctx context.Context, text string) IntentClassification
}

const analyzerSystemPrompt = `You are an intent classifier for an exam scheduling assistant.
Classify the user's question and extract entities. Respond with ONLY a JSON object, no markdown, no commentary:
{
  "intent": "exam_info|faculty_allocation|room_info|student_allocation|faculty_info|system_stats|general",
  "time_period": "past|present|future|none",
  "entities": {
    "examName": "...", "subjectName": "...", "subjectCode": "...",
    "roomNumber": "...", "building": "...", "facultyName": "...",
    "studentUSN": "...", "studentName": "...", "semester": "...",
    "year": "...", "date": "YYYY-MM-DD"
  }
}
Omit entity keys you did not find. Use "none" for time_period when the question has no temporal scope.`

// LLMAnalyzer classifies queries with a chat-completion call.
type LLMAnalyzer struct {
	llm    ChatCompleter
	logger *zap.Logger
}

func NewLLMAnalyzer(llm ChatCompleter, logger *zap.Logger) *LLMAnalyzer {
	return &LLMAnalyzer{llm: llm, logger: logger}
}

type rawClassification struct {
	Intent     string            `json:"intent"`
	TimePeriod string            `json:"time_period"`
	Entities   map[string]string `json:"entities"`
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, text string) IntentClassification {
	fallback := IntentClassification{
		Intent:     IntentGeneral,
		TimePeriod: TimeNone,
		Entities:   map[string]string{},
	}

	content, err := a.llm.Complete(ctx, analyzerSystemPrompt, text)
	if err != nil {
		a.logger.Warn("Query analysis failed, falling back to general intent", zap.Error(err))
		return fallback
	}

	parsed, ok := parseClassification(content)
	if !ok {
		a.logger.Warn("Query analysis returned unparseable output",
			zap.String("content", truncateForLog(content, 200)))
		return fallback
	}

	result := IntentClassification{
		Intent:     ParseIntent(parsed.Intent),
		TimePeriod: ParseTimePeriod(parsed.TimePeriod),
		Entities:   parsed.Entities,
	}
	if result.Entities == nil {
		result.Entities = map[string]string{}
	}
	return result
}

// parseClassification extracts the first JSON object from content, which may
// be wrapped in markdown fences or surrounded by commentary.
func parseClassification(content string) (rawClassification, bool) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	jsonStart := strings.Index(content, "{")
	jsonEnd := strings.LastIndex(content, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return rawClassification{}, false
	}

	var parsed rawClassification
	if err := json.Unmarshal([]byte(content[jsonStart:jsonEnd+1]), &parsed); err != nil {
		return rawClassification{}, false
	}
	return parsed, true
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
