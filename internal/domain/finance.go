package domain

// Finance line-item kinds stored in each item's "type" field.
const (
	FinanceIncome  = "income"
	FinanceExpense = "expense"
)

// NormalizeFinance prepares validated finance values for saving: items with a
// non-positive amount are dropped, the rest are numbered from 1, tagged with
// their kind, and default their display date to bucket. The display date never
// affects which bucket the record lands in.
func NormalizeFinance(fields map[string]any, bucket DateBucket) {
	for name, kind := range map[string]string{"incomes": FinanceIncome, "expenses": FinanceExpense} {
		list, _ := fields[name].([]any)
		kept := make([]any, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if amt, ok := toFloat(m["amount"]); !ok || amt <= 0 {
				continue
			}
			m["id"] = float64(len(kept) + 1)
			m["type"] = kind
			if d, _ := m["date"].(string); d == "" {
				m["date"] = string(bucket)
			}
			kept = append(kept, m)
		}
		fields[name] = kept
	}
}
