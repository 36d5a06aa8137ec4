package core

// CategoryAmount is an amount aggregated under a category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary is the aggregated view over a set of transactions within an
// optional date range.
type Summary struct {
	From     Date
	To       Date
	Income   Money
	Expenses Money
	// ByCategory lists expense totals per category in first-seen order.
	// Categories with no expense in range do not appear.
	ByCategory []CategoryAmount
}

// inRange reports whether d falls inside the inclusive [from, to]
// bounds. An empty bound is open on that side.
func inRange(d, from, to Date) bool {
	if !from.IsEmpty() && d.Before(from) {
		return false
	}
	if !to.IsEmpty() && d.After(to) {
		return false
	}
	return true
}

func sumByKind(txs []Transaction, kind Kind, from, to Date) Money {
	var total Money
	for _, t := range txs {
		if t.Kind != kind || !inRange(t.Date, from, to) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total
}

// TotalIncome sums income transactions dated within [from, to].
func TotalIncome(txs []Transaction, from, to Date) Money {
	return sumByKind(txs, Income, from, to)
}

// TotalExpenses sums expense transactions dated within [from, to].
func TotalExpenses(txs []Transaction, from, to Date) Money {
	return sumByKind(txs, Expense, from, to)
}

// ExpensesByCategory groups expense totals per category within
// [from, to], one entry per category observed, in first-seen order.
func ExpensesByCategory(txs []Transaction, from, to Date) []CategoryAmount {
	var order []string
	totals := make(map[string]Money)
	for _, t := range txs {
		if t.Kind != Expense || !inRange(t.Date, from, to) {
			continue
		}
		if _, seen := totals[t.Category]; !seen {
			order = append(order, t.Category)
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}

	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryAmount{Name: name, Amount: totals[name]})
	}
	return out
}

// BuildSummary computes the full report for the given range.
func BuildSummary(txs []Transaction, from, to Date) Summary {
	return Summary{
		From:       from,
		To:         to,
		Income:     TotalIncome(txs, from, to),
		Expenses:   TotalExpenses(txs, from, to),
		ByCategory: ExpensesByCategory(txs, from, to),
	}
}
