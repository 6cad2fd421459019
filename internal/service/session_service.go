package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Mithun-AM/Exam-allocation-system/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HistoryStore persists conversation turns per session. The pipeline only
// ever reads a bounded suffix.
type HistoryStore interface {
	Recent(ctx context.Context, sessionID string, n int) ([]ConversationTurn, error)
	Append(ctx context.Context, sessionID string, turns ...ConversationTurn) error
}

// SessionService keeps per-session history in a Redis list with a sliding
// expiry, so idle sessions age out on their own.
type SessionService struct {
	client *redis.Client
	cfg    *config.RedisConfig
	logger *zap.Logger
}

func NewSessionService(client *redis.Client, cfg *config.RedisConfig, logger *zap.Logger) *SessionService {
	return &SessionService{client: client, cfg: cfg, logger: logger}
}

func historyKey(sessionID string) string {
	return "chat_history:" + sessionID
}

func (s *SessionService) Recent(ctx context.Context, sessionID string, n int) ([]ConversationTurn, error) {
	if sessionID == "" || n <= 0 {
		return nil, nil
	}

	raw, err := s.client.LRange(ctx, historyKey(sessionID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	turns := make([]ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			s.logger.Warn("Dropping malformed history entry",
				zap.String("session_id", sessionID), zap.Error(err))
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *SessionService) Append(ctx context.Context, sessionID string, turns ...ConversationTurn) error {
	if sessionID == "" || len(turns) == 0 {
		return nil
	}

	key := historyKey(sessionID)
	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		payload, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("failed to marshal history entry: %w", err)
		}
		values = append(values, payload)
	}

	if err := s.client.RPush(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("failed to append session history: %w", err)
	}
	if err := s.client.Expire(ctx, key, s.cfg.HistoryTTL).Err(); err != nil {
		return fmt.Errorf("failed to refresh session expiry: %w", err)
	}
	return nil
}
