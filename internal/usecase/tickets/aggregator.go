package tickets

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"minerdash/internal/domain"
)

// Bucket — группа тикетов одного статуса со сводкой.
type Bucket struct {
	Status  domain.TicketStatus
	Tickets []domain.Ticket
	Count   int
	Total   decimal.Decimal
}

// Stats — сводка по всему списку тикетов.
type Stats struct {
	TotalCount      int
	TotalAmount     decimal.Decimal
	PendingCount    int
	PendingAmount   decimal.Decimal
	CompletedCount  int
	CompletedAmount decimal.Decimal
}

// parseAmount — суммы приходят от бэкенда как есть; битое значение считаем нулём,
// тикет при этом не теряем.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Group раскладывает тикеты по статусам. Каждый тикет попадает ровно в одну
// корзину по своему статусу; неизвестные статусы получают собственную корзину,
// молча ничего не выбрасываем.
func Group(ts []domain.Ticket) map[domain.TicketStatus]Bucket {
	out := make(map[domain.TicketStatus]Bucket)
	if len(ts) > 0 {
		// корзины канонических статусов присутствуют всегда (пусть и пустые)
		for _, st := range domain.StatusOrder {
			out[st] = Bucket{Status: st, Total: decimal.Zero}
		}
	}
	for _, t := range ts {
		b := out[t.Status]
		b.Status = t.Status
		b.Tickets = append(b.Tickets, t)
		b.Count++
		b.Total = b.Total.Add(parseAmount(t.Amount))
		out[t.Status] = b
	}
	return out
}

// OrderedBuckets — корзины в порядке показа: сначала канонический список,
// затем неизвестные статусы (по алфавиту), пустые отфильтрованы.
func OrderedBuckets(ts []domain.Ticket) []Bucket {
	grouped := Group(ts)

	known := make(map[domain.TicketStatus]bool, len(domain.StatusOrder))
	var out []Bucket
	for _, st := range domain.StatusOrder {
		known[st] = true
		if b, ok := grouped[st]; ok && b.Count > 0 {
			out = append(out, b)
		}
	}

	var rest []domain.TicketStatus
	for st, b := range grouped {
		if !known[st] && b.Count > 0 {
			rest = append(rest, st)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, st := range rest {
		out = append(out, grouped[st])
	}
	return out
}

// Summarize считает сводку: в "ожидающие" входят pending, awaiting_manual_review
// и processing, в "завершённые" — только completed.
func Summarize(ts []domain.Ticket) Stats {
	st := Stats{
		TotalAmount:     decimal.Zero,
		PendingAmount:   decimal.Zero,
		CompletedAmount: decimal.Zero,
	}
	for _, t := range ts {
		amt := parseAmount(t.Amount)
		st.TotalCount++
		st.TotalAmount = st.TotalAmount.Add(amt)
		switch {
		case t.Status.PendingLike():
			st.PendingCount++
			st.PendingAmount = st.PendingAmount.Add(amt)
		case t.Status == domain.StatusCompleted:
			st.CompletedCount++
			st.CompletedAmount = st.CompletedAmount.Add(amt)
		}
	}
	return st
}

// ===== Отмена тикета =====

// CancelBackend — нужная агрегатору часть клиента платформы.
type CancelBackend interface {
	CancelTicket(ctx context.Context, id string) (*domain.TicketPatch, error)
}

// Source — локальный держатель списка тикетов (session.Store).
type Source interface {
	Ticket(id string) (domain.Ticket, bool)
	ApplyTicketPatch(p domain.TicketPatch)
}

// Aggregator сопровождает список тикетов одного представления:
// группировки выше — чистые функции, здесь живёт переход отмены.
type Aggregator struct {
	mu       sync.Mutex
	inflight map[string]struct{} // отмены в полёте, по id тикета
	closed   bool

	backend CancelBackend
	store   Source
	log     *zap.Logger
}

func NewAggregator(backend CancelBackend, store Source, log *zap.Logger) *Aggregator {
	return &Aggregator{
		inflight: make(map[string]struct{}),
		backend:  backend,
		store:    store,
		log:      log,
	}
}

// Cancel отправляет ровно один запрос отмены на тикет. Для разных тикетов
// отмены могут идти параллельно, для одного — только одна.
// Успех точечно переводит тикет в cancelled; неуспех ничего не меняет.
func (a *Aggregator) Cancel(ctx context.Context, id string) (*domain.TicketPatch, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, domain.ErrStaleView
	}
	t, ok := a.store.Ticket(id)
	if !ok || !t.Status.Cancellable() {
		a.mu.Unlock()
		return nil, domain.ErrInvalidPrecondition
	}
	if _, busy := a.inflight[id]; busy {
		a.mu.Unlock()
		return nil, domain.ErrAlreadyInProgress
	}
	a.inflight[id] = struct{}{}
	a.mu.Unlock()

	patch, err := a.backend.CancelTicket(ctx, id)

	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inflight, id)
	if a.closed {
		// представление закрыто — поздний ответ отбрасываем
		return nil, domain.ErrStaleView
	}
	if err != nil {
		a.log.Warn("отмена тикета не прошла", zap.String("тикет", id), zap.Error(err))
		return nil, err
	}
	if patch == nil {
		patch = &domain.TicketPatch{}
	}
	patch.ID = id
	if patch.Status == "" {
		patch.Status = domain.StatusCancelled
	}
	a.store.ApplyTicketPatch(*patch)
	a.log.Info("тикет отменён", zap.String("тикет", id))
	return patch, nil
}

// Close — дальнейшие отмены и поздние ответы игнорируются.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}
