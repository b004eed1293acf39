package market

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"go.uber.org/zap"

	"minerdash/internal/shared/retry"
)

// Source — поставщик спотовых курсов для панели дашборда.
// Курсы чисто декоративные: при недоступности показываем прочерк, ядро не страдает.
type Source interface {
	Rates(ctx context.Context, currencies []string) (map[string]float64, error)
}

// Binance — курсы <COIN><QUOTE> со спота Binance (публичные данные, без ключей).
type Binance struct {
	client *binance.Client
	quote  string
	log    *zap.Logger
}

func NewBinance(quote string, log *zap.Logger) *Binance {
	if quote == "" {
		quote = "USDT"
	}
	return &Binance{
		client: binance.NewClient("", ""),
		quote:  strings.ToUpper(quote),
		log:    log,
	}
}

func (b *Binance) Rates(ctx context.Context, currencies []string) (map[string]float64, error) {
	var prices []*binance.SymbolPrice
	err := retry.WithRetry(ctx, 2, 400*time.Millisecond, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, 7*time.Second)
		defer cancel()
		p, err := b.client.NewListPricesService().Do(reqCtx)
		if err != nil {
			return err
		}
		prices = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string]float64, len(prices))
	for _, p := range prices {
		v, err := strconv.ParseFloat(p.Price, 64)
		if err != nil || v <= 0 {
			continue
		}
		bySymbol[p.Symbol] = v
	}

	out := make(map[string]float64, len(currencies))
	for _, c := range currencies {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if c == b.quote {
			out[c] = 1
			continue
		}
		if v, ok := bySymbol[c+b.quote]; ok {
			out[c] = v
		}
	}
	return out, nil
}
