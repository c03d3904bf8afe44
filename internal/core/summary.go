package core

// FinancialSummary totals a user's transactions by kind over a window.
// All figures are in cents; kinds with no matching rows contribute zero.
type FinancialSummary struct {
	TotalIncomeCents  int64
	TotalExpenseCents int64
	BalanceCents      int64
}

// CategoryStat aggregates one category's transactions of a single kind.
// Categories without matching transactions are never emitted.
type CategoryStat struct {
	CategoryID   int64
	CategoryName string
	TotalCents   int64
	Count        int64
}
