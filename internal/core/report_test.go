package core

import "testing"

func tx(kind Kind, cents int64, category string, date Date) Transaction {
	return Transaction{Kind: kind, Amount: Money{Cents: cents}, Category: category, Date: date}
}

func TestTotalsOverEmptySet(t *testing.T) {
	var none []Transaction
	if got := TotalIncome(none, Date{}, Date{}); got.Cents != 0 {
		t.Fatalf("income expected 0, got %d", got.Cents)
	}
	if got := TotalExpenses(none, Date{}, Date{}); got.Cents != 0 {
		t.Fatalf("expenses expected 0, got %d", got.Cents)
	}
	if got := ExpensesByCategory(none, Date{}, Date{}); len(got) != 0 {
		t.Fatalf("expected no category entries, got %v", got)
	}
}

func TestTotalsByKind(t *testing.T) {
	day := NewDate(2024, 1, 10)
	txs := []Transaction{
		tx(Income, 300000, "Salary", day),
		tx(Expense, 15000, "Food", day),
		tx(Expense, 5000, "Transport", day),
	}
	if got := TotalIncome(txs, Date{}, Date{}); got.Cents != 300000 {
		t.Fatalf("income expected 300000, got %d", got.Cents)
	}
	if got := TotalExpenses(txs, Date{}, Date{}); got.Cents != 20000 {
		t.Fatalf("expenses expected 20000, got %d", got.Cents)
	}
}

func TestExpensesByCategory(t *testing.T) {
	day := NewDate(2024, 1, 10)
	txs := []Transaction{
		tx(Expense, 15000, "Food", day),
		tx(Expense, 5000, "Transport", day),
		tx(Expense, 2500, "Food", day),
		tx(Income, 100000, "Salary", day),
	}
	got := ExpensesByCategory(txs, Date{}, Date{})
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Name != "Food" || got[0].Amount.Cents != 17500 {
		t.Fatalf("first entry mismatch: %+v", got[0])
	}
	if got[1].Name != "Transport" || got[1].Amount.Cents != 5000 {
		t.Fatalf("second entry mismatch: %+v", got[1])
	}
}

func TestDateBoundedAggregation(t *testing.T) {
	txs := []Transaction{
		tx(Expense, 100, "a", NewDate(2024, 1, 1)),
		tx(Expense, 200, "b", NewDate(2024, 2, 1)),
		tx(Expense, 400, "c", NewDate(2024, 3, 1)),
	}
	from := NewDate(2024, 1, 15)
	to := NewDate(2024, 2, 15)

	if got := TotalExpenses(txs, from, to); got.Cents != 200 {
		t.Fatalf("bounded expenses expected 200, got %d", got.Cents)
	}
	byCat := ExpensesByCategory(txs, from, to)
	if len(byCat) != 1 || byCat[0].Name != "b" {
		t.Fatalf("bounded categories mismatch: %v", byCat)
	}
}

func TestBoundsAreInclusive(t *testing.T) {
	day := NewDate(2024, 2, 1)
	txs := []Transaction{tx(Expense, 200, "b", day)}

	if got := TotalExpenses(txs, day, day); got.Cents != 200 {
		t.Fatalf("same-day bound expected 200, got %d", got.Cents)
	}
	if got := TotalExpenses(txs, NewDate(2024, 2, 2), Date{}); got.Cents != 0 {
		t.Fatalf("from after date expected 0, got %d", got.Cents)
	}
	if got := TotalExpenses(txs, Date{}, NewDate(2024, 1, 31)); got.Cents != 0 {
		t.Fatalf("to before date expected 0, got %d", got.Cents)
	}
}

func TestBuildSummary(t *testing.T) {
	day := NewDate(2024, 1, 10)
	txs := []Transaction{
		tx(Income, 300000, "Salary", day),
		tx(Expense, 15000, "Food", day),
		tx(Expense, 5000, "Transport", day),
	}
	sum := BuildSummary(txs, Date{}, Date{})
	if sum.Income.Cents != 300000 || sum.Expenses.Cents != 20000 {
		t.Fatalf("summary totals mismatch: %+v", sum)
	}
	if len(sum.ByCategory) != 2 {
		t.Fatalf("summary categories mismatch: %+v", sum.ByCategory)
	}
}
