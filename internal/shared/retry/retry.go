package retry

import (
	"context"
	"time"
)

// WithRetry выполняет op с повторами и простым экспоненциальным бэкоффом.
// Ядро проекции повторов не делает; повторы нужны внешнему слою
// (начальная загрузка, курсы валют).
func WithRetry(ctx context.Context, attempts int, sleep time.Duration, op func() error) error {
	var err error
	backoff := sleep
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 5*time.Second {
			backoff *= 2
		}
	}
	return err
}
