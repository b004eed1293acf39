package txsummary

import (
	"sort"

	"github.com/shopspring/decimal"

	"minerdash/internal/domain"
)

// Line — итог по одному типу операций кошелька.
type Line struct {
	Type  string
	Count int
	Total decimal.Decimal
}

// ByType — инвестиционная сводка по истории кошелька.
// Битые суммы считаем нулём, как и в тикетах.
func ByType(txs []domain.Transaction) []Line {
	acc := make(map[string]*Line)
	for _, tx := range txs {
		l, ok := acc[tx.Type]
		if !ok {
			l = &Line{Type: tx.Type, Total: decimal.Zero}
			acc[tx.Type] = l
		}
		l.Count++
		if d, err := decimal.NewFromString(tx.Amount); err == nil {
			l.Total = l.Total.Add(d)
		}
	}

	out := make([]Line, 0, len(acc))
	for _, l := range acc {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
