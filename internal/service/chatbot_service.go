package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mithun-AM/Exam-allocation-system/pkg/config"

	"go.uber.org/zap"
)

// NoRelevantDataAnswer short-circuits semantic queries whose candidates all
// fall below the relevance threshold; no completion call is made.
const NoRelevantDataAnswer = "No relevant exam data available."

// ChatbotService orchestrates the two retrieval strategies end to end.
type ChatbotService struct {
	analyzer  QueryAnalyzer
	retrieval *RetrievalService
	formatter *ContextService
	chat      *ChatService
	cache     *VectorCacheService
	embedder  Embedder
	sessions  HistoryStore
	cfg       *config.Config
	logger    *zap.Logger
}

func NewChatbotService(
	analyzer QueryAnalyzer,
	retrieval *RetrievalService,
	formatter *ContextService,
	chat *ChatService,
	cache *VectorCacheService,
	embedder Embedder,
	sessions HistoryStore,
	cfg *config.Config,
	logger *zap.Logger,
) *ChatbotService {
	return &ChatbotService{
		analyzer:  analyzer,
		retrieval: retrieval,
		formatter: formatter,
		chat:      chat,
		cache:     cache,
		embedder:  embedder,
		sessions:  sessions,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ask answers a query through intent-routed structured retrieval.
func (s *ChatbotService) Ask(ctx context.Context, q Query, sessionID string) (string, error) {
	if strings.TrimSpace(q.Text) == "" {
		return "", fmt.Errorf("%w: query text is required", ErrValidation)
	}

	history := s.loadHistory(ctx, sessionID)

	classification := s.analyzer.Analyze(ctx, q.Text)
	s.logger.Debug("Query classified",
		zap.String("intent", string(classification.Intent)),
		zap.String("time_period", string(classification.TimePeriod)))

	bundle := s.retrieval.Route(ctx, classification, q)
	formatted := s.formatter.FormatBundle(bundle)

	answer := s.chat.Generate(ctx, q, formatted, history)
	s.recordTurns(ctx, sessionID, q.Text, answer)
	return answer, nil
}

// SemanticDebug reports how a semantic query matched against the index.
// Generation identifies which rebuild of the index served the search.
type SemanticDebug struct {
	Matches       int     `json:"matches"`
	TopSimilarity float32 `json:"top_similarity"`
	Generation    int64   `json:"generation"`
}

// AskAdmin answers a query through embedding-based semantic retrieval over
// the vector cache. When no candidate clears the relevance threshold the
// model is never called.
func (s *ChatbotService) AskAdmin(ctx context.Context, q Query, sessionID string) (string, *SemanticDebug, error) {
	if strings.TrimSpace(q.Text) == "" {
		return "", nil, fmt.Errorf("%w: query text is required", ErrValidation)
	}

	vector, err := s.embedder.Embed(ctx, q.Text)
	if err != nil {
		return "", nil, err
	}

	results, err := s.cache.Search(ctx, vector, s.cfg.VectorCache.TopK)
	if err != nil {
		return "", nil, err
	}

	debug := &SemanticDebug{Matches: len(results), Generation: s.cache.Generation()}
	for _, res := range results {
		if res.Similarity > debug.TopSimilarity {
			debug.TopSimilarity = res.Similarity
		}
	}

	formatted, ok := s.formatter.FormatSemantic(results)
	if !ok {
		return NoRelevantDataAnswer, debug, nil
	}

	history := s.loadHistory(ctx, sessionID)
	answer := s.chat.Generate(ctx, q, formatted, history)
	s.recordTurns(ctx, sessionID, q.Text, answer)
	return answer, debug, nil
}

// CacheData triggers a full rebuild of the semantic index.
func (s *ChatbotService) CacheData(ctx context.Context) (*RebuildReport, error) {
	return s.cache.Rebuild(ctx)
}

func (s *ChatbotService) loadHistory(ctx context.Context, sessionID string) []ConversationTurn {
	history, err := s.sessions.Recent(ctx, sessionID, s.cfg.Chat.HistoryWindow)
	if err != nil {
		s.logger.Warn("Failed to load session history, continuing without it",
			zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	return history
}

func (s *ChatbotService) recordTurns(ctx context.Context, sessionID, question, answer string) {
	if sessionID == "" {
		return
	}
	err := s.sessions.Append(ctx, sessionID,
		ConversationTurn{Role: TurnUser, Content: question},
		ConversationTurn{Role: TurnAssistant, Content: answer},
	)
	if err != nil {
		s.logger.Warn("Failed to persist session history",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}
