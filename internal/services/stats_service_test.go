package services

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type countingReader struct {
	summary      core.FinancialSummary
	stats        []core.CategoryStat
	summaryCalls int
	statsCalls   int
}

func (r *countingReader) FinancialSummary(_ context.Context, _ int64, _ core.DateWindow) (core.FinancialSummary, error) {
	r.summaryCalls++
	return r.summary, nil
}

func (r *countingReader) CategoryStats(_ context.Context, _ int64, _ core.TransactionKind, _ core.DateWindow) ([]core.CategoryStat, error) {
	r.statsCalls++
	return r.stats, nil
}

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

func TestStatsService_SummaryCached(t *testing.T) {
	reader := &countingReader{summary: core.FinancialSummary{TotalIncomeCents: 1000, TotalExpenseCents: 400, BalanceCents: 600}}
	svc := NewStatsService(reader, testLogger(), 16, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := svc.Summary(ctx, 1, core.DateWindow{})
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		if got.BalanceCents != 600 {
			t.Fatalf("unexpected summary: %+v", got)
		}
	}
	if reader.summaryCalls != 1 {
		t.Fatalf("expected a single storage read, got %d", reader.summaryCalls)
	}
}

func TestStatsService_WindowsCacheSeparately(t *testing.T) {
	reader := &countingReader{}
	svc := NewStatsService(reader, testLogger(), 16, time.Minute)
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Summary(ctx, 1, core.DateWindow{}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if _, err := svc.Summary(ctx, 1, core.DateWindow{Start: &start}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if reader.summaryCalls != 2 {
		t.Fatalf("distinct windows must not share cache entries, got %d reads", reader.summaryCalls)
	}
}

func TestStatsService_InvalidateForcesRecompute(t *testing.T) {
	reader := &countingReader{stats: []core.CategoryStat{{CategoryID: 1, CategoryName: "Food", TotalCents: 3000, Count: 2}}}
	svc := NewStatsService(reader, testLogger(), 16, time.Minute)
	ctx := context.Background()

	if _, err := svc.CategoryBreakdown(ctx, 1, core.Expense, core.DateWindow{}); err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if _, err := svc.CategoryBreakdown(ctx, 1, core.Expense, core.DateWindow{}); err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if reader.statsCalls != 1 {
		t.Fatalf("expected cached second read, got %d", reader.statsCalls)
	}

	svc.Invalidate(1)
	if _, err := svc.CategoryBreakdown(ctx, 1, core.Expense, core.DateWindow{}); err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if reader.statsCalls != 2 {
		t.Fatalf("invalidation must force a recompute, got %d reads", reader.statsCalls)
	}
}

func TestStatsService_InvalidateScopedToUser(t *testing.T) {
	reader := &countingReader{}
	svc := NewStatsService(reader, testLogger(), 16, time.Minute)
	ctx := context.Background()

	if _, err := svc.Summary(ctx, 1, core.DateWindow{}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if _, err := svc.Summary(ctx, 2, core.DateWindow{}); err != nil {
		t.Fatalf("summary: %v", err)
	}

	svc.Invalidate(2)

	if _, err := svc.Summary(ctx, 1, core.DateWindow{}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if reader.summaryCalls != 2 {
		t.Fatalf("user 1's cache must survive user 2's invalidation, got %d reads", reader.summaryCalls)
	}
}
