// Package services holds the application services sitting between the
// HTTP handlers and storage: ledger mutations with event fan-out, and
// cached financial aggregation.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// StatsReader is the slice of storage the aggregation service needs.
type StatsReader interface {
	FinancialSummary(ctx context.Context, userID int64, window core.DateWindow) (core.FinancialSummary, error)
	CategoryStats(ctx context.Context, userID int64, kind core.TransactionKind, window core.DateWindow) ([]core.CategoryStat, error)
}

// StatsService serves financial aggregates with an LRU+TTL cache in
// front of the SQL queries. Cache keys embed a per-user generation
// counter; bumping the counter on a ledger mutation orphans every
// cached entry for that user without scanning the cache.
type StatsService struct {
	reader StatsReader
	logger *log.Logger

	summaries  *cache.LRUCache[core.FinancialSummary]
	breakdowns *cache.LRUCache[[]core.CategoryStat]

	mu          sync.Mutex
	generations map[int64]uint64
}

// NewStatsService creates the aggregation service with caches of the
// given capacity and TTL.
func NewStatsService(reader StatsReader, logger *log.Logger, cacheSize int, cacheTTL time.Duration) *StatsService {
	return &StatsService{
		reader:      reader,
		logger:      logger.WithComponent(log.ComponentStats),
		summaries:   cache.NewLRUCache[core.FinancialSummary](cacheSize, cacheTTL),
		breakdowns:  cache.NewLRUCache[[]core.CategoryStat](cacheSize, cacheTTL),
		generations: make(map[int64]uint64),
	}
}

// Summary returns income, expense and balance totals for the user
// within the optional date window.
func (s *StatsService) Summary(ctx context.Context, userID int64, window core.DateWindow) (core.FinancialSummary, error) {
	key := fmt.Sprintf("summary:%d:%d:%s", userID, s.generation(userID), windowKey(window))
	if cached, ok := s.summaries.Get(key); ok {
		return cached, nil
	}

	summary, err := s.reader.FinancialSummary(ctx, userID, window)
	if err != nil {
		return core.FinancialSummary{}, err
	}

	s.summaries.Set(key, summary)
	s.logger.DebugContext(ctx, "summary computed",
		log.FieldUserID, userID,
		log.FieldOperation, log.OpRead)
	return summary, nil
}

// CategoryBreakdown returns per-category totals of the given kind for
// the user within the optional date window. Categories without matching
// transactions are omitted.
func (s *StatsService) CategoryBreakdown(ctx context.Context, userID int64, kind core.TransactionKind, window core.DateWindow) ([]core.CategoryStat, error) {
	key := fmt.Sprintf("breakdown:%d:%d:%s:%s", userID, s.generation(userID), kind, windowKey(window))
	if cached, ok := s.breakdowns.Get(key); ok {
		return cached, nil
	}

	stats, err := s.reader.CategoryStats(ctx, userID, kind, window)
	if err != nil {
		return nil, err
	}

	s.breakdowns.Set(key, stats)
	return stats, nil
}

// Invalidate discards every cached aggregate for the user. Call it
// after any mutation that can change the user's totals.
func (s *StatsService) Invalidate(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
}

func (s *StatsService) generation(userID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

// Caches exposes the internal caches for periodic expired-entry sweeps.
func (s *StatsService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.summaries, s.breakdowns}
}

func windowKey(w core.DateWindow) string {
	start, end := "-", "-"
	if w.Start != nil {
		start = w.Start.UTC().Format(time.RFC3339)
	}
	if w.End != nil {
		end = w.End.UTC().Format(time.RFC3339)
	}
	return start + ".." + end
}
