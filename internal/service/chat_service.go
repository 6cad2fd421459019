package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/config"

	"go.uber.org/zap"
)

// FallbackAnswer is what the user sees when generation fails. Raw errors
// never reach the chat surface.
const FallbackAnswer = "I'm sorry, I couldn't process your request right now. Please try again in a moment."

const promptGuardrails = `RULES:
- Answer ONLY from the context above. If the context does not contain the answer, say the information is not available.
- Never invent exams, rooms, dates, names or numbers.
- Keep dates and times exactly as written in the context.
- Use a bulleted list when the answer covers more than one item.
- Be concise and direct.`

// ChatService assembles the final prompt and calls the chat-completion
// endpoint, degrading to a fixed answer on any failure.
type ChatService struct {
	llm    ChatCompleter
	cfg    *config.ChatConfig
	logger *zap.Logger
}

func NewChatService(llm ChatCompleter, cfg *config.ChatConfig, logger *zap.Logger) *ChatService {
	return &ChatService{llm: llm, cfg: cfg, logger: logger}
}

// Generate builds a role-aware prompt from the formatted context and the
// bounded history suffix, then asks the model. Always returns a printable
// answer; transport failures yield FallbackAnswer.
func (s *ChatService) Generate(ctx context.Context, q Query, formattedContext string, history []ConversationTurn) string {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	systemPrompt := s.buildSystemPrompt(q.Role, q.ActingUserName, formattedContext)
	userMessage := s.buildUserMessage(q.Text, history)

	answer, err := s.llm.Complete(ctx, systemPrompt, userMessage)
	if err != nil {
		s.logger.Error("Chat completion failed", zap.Error(err))
		return FallbackAnswer
	}
	if answer == "" {
		return FallbackAnswer
	}
	return answer
}

func (s *ChatService) buildSystemPrompt(role models.Role, name, formattedContext string) string {
	var b strings.Builder
	switch role {
	case models.RoleAdmin:
		b.WriteString("You are the exam scheduling assistant for an administrator. " +
			"The administrator has full access to all exams, rooms, faculty assignments and student seating across the institution. " +
			"Answer comprehensively across all entities.\n\n")
	case models.RoleFaculty:
		if name == "" {
			name = "the faculty member"
		}
		fmt.Fprintf(&b, "You are the exam scheduling assistant for %s, a faculty member. "+
			"Address them by name. Focus on their own invigilation duties, room assignments and schedules; "+
			"they should not receive other faculty members' personal details.\n\n", name)
	default:
		b.WriteString("You are the exam scheduling assistant. " +
			"Answer general questions about exam schedules, rooms and subjects.\n\n")
	}

	b.WriteString(promptGuardrails)
	b.WriteString("\n\nCONTEXT:\n")
	b.WriteString(formattedContext)
	return b.String()
}

// buildUserMessage folds the recent history suffix into the user turn.
// Older turns are dropped silently.
func (s *ChatService) buildUserMessage(text string, history []ConversationTurn) string {
	history = LastTurns(history, s.cfg.HistoryWindow)
	if len(history) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, turn := range history {
		label := "User"
		if turn.Role == TurnAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, turn.Content)
	}
	b.WriteString("\nCurrent question: ")
	b.WriteString(text)
	return b.String()
}

// LastTurns returns the most recent n turns.
func LastTurns(history []ConversationTurn, n int) []ConversationTurn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
