package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestAnalyze_ParsesCleanJSON(t *testing.T) {
	llm := &mockCompleter{response: `{"intent":"faculty_allocation","time_period":"future","entities":{"facultyName":"Dr. Rao"}}`}
	analyzer := NewLLMAnalyzer(llm, zap.NewNop())

	got := analyzer.Analyze(context.Background(), "what are Dr. Rao's duties next week?")

	if got.Intent != IntentFacultyAllocation {
		t.Errorf("unexpected intent: %s", got.Intent)
	}
	if got.TimePeriod != TimeFuture {
		t.Errorf("unexpected time period: %s", got.TimePeriod)
	}
	if got.Entity("facultyName") != "Dr. Rao" {
		t.Errorf("unexpected entity: %q", got.Entity("facultyName"))
	}
}

func TestAnalyze_StripsMarkdownFences(t *testing.T) {
	llm := &mockCompleter{response: "```json\n{\"intent\":\"room_info\",\"time_period\":\"none\",\"entities\":{\"roomNumber\":\"204\"}}\n```"}
	analyzer := NewLLMAnalyzer(llm, zap.NewNop())

	got := analyzer.Analyze(context.Background(), "who is in room 204?")

	if got.Intent != IntentRoomInfo {
		t.Errorf("unexpected intent: %s", got.Intent)
	}
	if got.Entity("roomNumber") != "204" {
		t.Errorf("unexpected entity: %q", got.Entity("roomNumber"))
	}
}

func TestAnalyze_ExtractsJSONFromCommentary(t *testing.T) {
	llm := &mockCompleter{response: `Sure, here is the classification: {"intent":"exam_info","entities":{"examName":"Midterm"}} hope that helps`}
	analyzer := NewLLMAnalyzer(llm, zap.NewNop())

	got := analyzer.Analyze(context.Background(), "when is the midterm?")

	if got.Intent != IntentExamInfo {
		t.Errorf("unexpected intent: %s", got.Intent)
	}
	if got.TimePeriod != TimeNone {
		t.Errorf("absent time period should default to none, got %s", got.TimePeriod)
	}
}

func TestAnalyze_FallsBackOnError(t *testing.T) {
	llm := &mockCompleter{err: errors.New("llm unavailable")}
	analyzer := NewLLMAnalyzer(llm, zap.NewNop())

	got := analyzer.Analyze(context.Background(), "anything")

	if got.Intent != IntentGeneral {
		t.Errorf("analysis failure must fall back to general, got %s", got.Intent)
	}
	if got.Entities == nil {
		t.Error("entities map must never be nil")
	}
}

func TestAnalyze_FallsBackOnGarbage(t *testing.T) {
	llm := &mockCompleter{response: "I could not classify that question."}
	analyzer := NewLLMAnalyzer(llm, zap.NewNop())

	got := analyzer.Analyze(context.Background(), "anything")

	if got.Intent != IntentGeneral {
		t.Errorf("unparseable output must fall back to general, got %s", got.Intent)
	}
}

func TestAnalyze_UnknownIntentNormalizedToGeneral(t *testing.T) {
	llm := &mockCompleter{response: `{"intent":"weather_report","time_period":"sometime","entities":null}`}
	analyzer := NewLLMAnalyzer(llm, zap.NewNop())

	got := analyzer.Analyze(context.Background(), "will it rain?")

	if got.Intent != IntentGeneral {
		t.Errorf("unknown intents must normalize to general, got %s", got.Intent)
	}
	if got.TimePeriod != TimeNone {
		t.Errorf("unknown periods must normalize to none, got %s", got.TimePeriod)
	}
	if got.Entities == nil {
		t.Error("entities map must never be nil")
	}
}

func TestEntityInt(t *testing.T) {
	c := IntentClassification{Entities: map[string]string{
		"semester": "3",
		"year":     " 2026 ",
		"bad":      "3rd",
	}}

	if got := c.EntityInt("semester"); got == nil || *got != 3 {
		t.Errorf("semester: got %v", got)
	}
	if got := c.EntityInt("year"); got == nil || *got != 2026 {
		t.Errorf("year: got %v", got)
	}
	if got := c.EntityInt("bad"); got != nil {
		t.Errorf("malformed numbers must parse to nil, got %v", got)
	}
	if got := c.EntityInt("absent"); got != nil {
		t.Errorf("absent slots must parse to nil, got %v", got)
	}
}
