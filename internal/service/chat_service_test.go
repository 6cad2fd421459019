package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/config"

	"go.uber.org/zap"
)

func testChatService(llm ChatCompleter) *ChatService {
	cfg := &config.ChatConfig{HistoryWindow: 5, MaxContextChars: 6000, Timeout: 30 * time.Second}
	return NewChatService(llm, cfg, zap.NewNop())
}

func TestGenerate_RolePrompts(t *testing.T) {
	cases := []struct {
		role models.Role
		name string
		want string
	}{
		{models.RoleAdmin, "System Admin", "administrator"},
		{models.RoleFaculty, "Dr. Rao", "Dr. Rao"},
		{models.RoleAnonymous, "", "general questions"},
	}

	for _, tc := range cases {
		llm := &mockCompleter{response: "answer"}
		svc := testChatService(llm)

		q := Query{Text: "when is the exam?", Role: tc.role, ActingUserName: tc.name}
		svc.Generate(context.Background(), q, "CONTEXT BODY", nil)

		if len(llm.systemPrompts) != 1 {
			t.Fatalf("role %s: expected one completion call", tc.role)
		}
		prompt := llm.systemPrompts[0]
		if !strings.Contains(prompt, tc.want) {
			t.Errorf("role %s: system prompt missing %q", tc.role, tc.want)
		}
		if !strings.Contains(prompt, "Never invent") {
			t.Errorf("role %s: guardrails block missing", tc.role)
		}
		if !strings.Contains(prompt, "CONTEXT BODY") {
			t.Errorf("role %s: formatted context missing from prompt", tc.role)
		}
	}
}

func TestGenerate_HistoryWindowTruncation(t *testing.T) {
	llm := &mockCompleter{response: "answer"}
	svc := testChatService(llm)

	var history []ConversationTurn
	for i := 0; i < 12; i++ {
		history = append(history, ConversationTurn{Role: TurnUser, Content: fmt.Sprintf("turn %d", i)})
	}

	q := Query{Text: "latest question", Role: models.RoleAdmin}
	svc.Generate(context.Background(), q, "ctx", history)

	msg := llm.userMessages[0]
	if strings.Contains(msg, "turn 6") {
		t.Errorf("turns older than the window must be dropped: %s", msg)
	}
	for i := 7; i < 12; i++ {
		if !strings.Contains(msg, fmt.Sprintf("turn %d", i)) {
			t.Errorf("recent turn %d missing from message: %s", i, msg)
		}
	}
	if !strings.Contains(msg, "latest question") {
		t.Errorf("current question missing: %s", msg)
	}
}

func TestGenerate_NoHistoryPassesQueryVerbatim(t *testing.T) {
	llm := &mockCompleter{response: "answer"}
	svc := testChatService(llm)

	svc.Generate(context.Background(), Query{Text: "plain question", Role: models.RoleAnonymous}, "ctx", nil)

	if llm.userMessages[0] != "plain question" {
		t.Errorf("expected the bare query, got %q", llm.userMessages[0])
	}
}

func TestGenerate_FailureReturnsFallback(t *testing.T) {
	llm := &mockCompleter{err: errors.New("network down")}
	svc := testChatService(llm)

	got := svc.Generate(context.Background(), Query{Text: "q", Role: models.RoleAdmin}, "ctx", nil)

	if got != FallbackAnswer {
		t.Errorf("transport failures must degrade to the fixed answer, got %q", got)
	}
}

func TestGenerate_EmptyCompletionReturnsFallback(t *testing.T) {
	llm := &mockCompleter{response: ""}
	svc := testChatService(llm)

	got := svc.Generate(context.Background(), Query{Text: "q", Role: models.RoleAdmin}, "ctx", nil)

	if got != FallbackAnswer {
		t.Errorf("empty completions must degrade to the fixed answer, got %q", got)
	}
}

func TestLastTurns(t *testing.T) {
	history := []ConversationTurn{
		{Role: TurnUser, Content: "a"},
		{Role: TurnAssistant, Content: "b"},
		{Role: TurnUser, Content: "c"},
	}

	if got := LastTurns(history, 2); len(got) != 2 || got[0].Content != "b" {
		t.Errorf("unexpected suffix: %v", got)
	}
	if got := LastTurns(history, 10); len(got) != 3 {
		t.Errorf("window larger than history should return everything: %v", got)
	}
	if got := LastTurns(nil, 5); len(got) != 0 {
		t.Errorf("nil history should stay empty: %v", got)
	}
}
