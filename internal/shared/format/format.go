package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FloatRU возвращает строку в формате "100.000.000,00"
func FloatRU(v float64) string {
	// Сначала печатаем строго 8 знаков (суммы майнинга бывают мелкими)
	s := fmt.Sprintf("%.8f", v)
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}

	// Убираем лишние нули справа, но оставляем хотя бы один знак
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}

	// Целая часть с разделителями тысяч
	var out []byte
	cnt := 0
	for i := len(intPart) - 1; i >= 0; i-- {
		out = append(out, intPart[i])
		cnt++
		if cnt%3 == 0 && i != 0 {
			out = append(out, '.')
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return string(out) + "," + frac
}

// DecimalRU — то же для decimal-сумм тикетов.
func DecimalRU(d decimal.Decimal) string {
	f, _ := d.Float64()
	return FloatRU(f)
}

// Countdown — "чч:мм:сс" для таймера до конца цикла. Часы не ограничиваем 24.
func Countdown(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
