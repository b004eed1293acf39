package tickets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"minerdash/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tk(id, amount string, status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{ID: id, Amount: amount, Currency: "USDT", Status: status}
}

func TestGroupCompleteness(t *testing.T) {
	ts := []domain.Ticket{
		tk("1", "10", domain.StatusPending),
		tk("2", "5", domain.StatusCompleted),
		tk("3", "7", domain.StatusPending),
		tk("4", "1", "weird_status"),
	}
	grouped := Group(ts)

	total := 0
	for _, b := range grouped {
		total += len(b.Tickets)
		if b.Count != len(b.Tickets) {
			t.Fatalf("корзина %s: count=%d, тикетов=%d", b.Status, b.Count, len(b.Tickets))
		}
	}
	if total != len(ts) {
		t.Fatalf("в корзинах %d тикетов, во входе %d", total, len(ts))
	}
	// неизвестный статус не потерян
	if grouped["weird_status"].Count != 1 {
		t.Fatalf("тикет с неизвестным статусом пропал")
	}
}

func TestOrderedBuckets(t *testing.T) {
	ts := []domain.Ticket{
		tk("1", "1", "zz_custom"),
		tk("2", "1", domain.StatusCompleted),
		tk("3", "1", domain.StatusPending),
		tk("4", "1", "aa_custom"),
	}
	out := OrderedBuckets(ts)
	got := make([]domain.TicketStatus, 0, len(out))
	for _, b := range out {
		got = append(got, b.Status)
	}
	want := []domain.TicketStatus{domain.StatusPending, domain.StatusCompleted, "aa_custom", "zz_custom"}
	if len(got) != len(want) {
		t.Fatalf("корзин=%d want=%d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("позиция %d: %s want=%s", i, got[i], want[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	ts := []domain.Ticket{
		tk("1", "10", domain.StatusPending),
		tk("2", "5", domain.StatusCompleted),
		tk("3", "bad", domain.StatusPending), // битая сумма считается нулём
	}
	st := Summarize(ts)
	if st.TotalCount != 3 || !st.TotalAmount.Equal(dec("15")) {
		t.Fatalf("total: count=%d amount=%s", st.TotalCount, st.TotalAmount)
	}
	if st.PendingCount != 2 || !st.PendingAmount.Equal(dec("10")) {
		t.Fatalf("pending: count=%d amount=%s", st.PendingCount, st.PendingAmount)
	}
	if st.CompletedCount != 1 || !st.CompletedAmount.Equal(dec("5")) {
		t.Fatalf("completed: count=%d amount=%s", st.CompletedCount, st.CompletedAmount)
	}
}

// ===== Отмена =====

type fakeStore struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	patches int
}

func newFakeStore(ts ...domain.Ticket) *fakeStore {
	m := make(map[string]domain.Ticket)
	for _, t := range ts {
		m[t.ID] = t
	}
	return &fakeStore{tickets: m}
}

func (s *fakeStore) Ticket(id string) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	return t, ok
}

func (s *fakeStore) ApplyTicketPatch(p domain.TicketPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches++
	t := s.tickets[p.ID]
	t.Status = p.Status
	s.tickets[p.ID] = t
}

func (s *fakeStore) patchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patches
}

type fakeCanceller struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	patch   *domain.TicketPatch
	err     error
}

func (f *fakeCanceller) CancelTicket(ctx context.Context, id string) (*domain.TicketPatch, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.patch, f.err
}

func (f *fakeCanceller) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCancelGuardTerminalStatus(t *testing.T) {
	fc := &fakeCanceller{}
	store := newFakeStore(tk("1", "10", domain.StatusCompleted))
	a := NewAggregator(fc, store, zap.NewNop())

	_, err := a.Cancel(context.Background(), "1")
	if !errors.Is(err, domain.ErrInvalidPrecondition) {
		t.Fatalf("err=%v want=ErrInvalidPrecondition", err)
	}
	if fc.callCount() != 0 {
		t.Fatalf("запрос ушёл в сеть для завершённого тикета")
	}
}

func TestCancelUnknownTicket(t *testing.T) {
	a := NewAggregator(&fakeCanceller{}, newFakeStore(), zap.NewNop())
	if _, err := a.Cancel(context.Background(), "нет-такого"); !errors.Is(err, domain.ErrInvalidPrecondition) {
		t.Fatalf("err=%v want=ErrInvalidPrecondition", err)
	}
}

func TestCancelOptimisticPatch(t *testing.T) {
	fc := &fakeCanceller{patch: &domain.TicketPatch{Status: domain.StatusCancelled}}
	store := newFakeStore(tk("1", "10", domain.StatusPending))
	a := NewAggregator(fc, store, zap.NewNop())

	patch, err := a.Cancel(context.Background(), "1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if patch.ID != "1" || patch.Status != domain.StatusCancelled {
		t.Fatalf("patch=%+v", patch)
	}
	got, _ := store.Ticket("1")
	if got.Status != domain.StatusCancelled {
		t.Fatalf("статус=%s want=cancelled", got.Status)
	}
}

func TestCancelPerTicketInflight(t *testing.T) {
	fc := &fakeCanceller{patch: &domain.TicketPatch{}, release: make(chan struct{})}
	store := newFakeStore(
		tk("1", "10", domain.StatusPending),
		tk("2", "20", domain.StatusPending),
	)
	a := NewAggregator(fc, store, zap.NewNop())

	done := make(chan error, 2)
	go func() {
		_, err := a.Cancel(context.Background(), "1")
		done <- err
	}()
	for fc.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	// тот же тикет — отказ без сети
	if _, err := a.Cancel(context.Background(), "1"); !errors.Is(err, domain.ErrAlreadyInProgress) {
		t.Fatalf("повторная отмена: err=%v want=ErrAlreadyInProgress", err)
	}

	// другой тикет — можно параллельно
	go func() {
		_, err := a.Cancel(context.Background(), "2")
		done <- err
	}()
	for fc.callCount() < 2 {
		time.Sleep(time.Millisecond)
	}

	close(fc.release)
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("cancel: %v", err)
		}
	}
	if fc.callCount() != 2 {
		t.Fatalf("запросов=%d want=2", fc.callCount())
	}
}

func TestCancelStaleDiscarded(t *testing.T) {
	fc := &fakeCanceller{patch: &domain.TicketPatch{}, release: make(chan struct{})}
	store := newFakeStore(tk("1", "10", domain.StatusPending))
	a := NewAggregator(fc, store, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := a.Cancel(context.Background(), "1")
		done <- err
	}()
	for fc.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	a.Close()
	close(fc.release)

	if err := <-done; !errors.Is(err, domain.ErrStaleView) {
		t.Fatalf("err=%v want=ErrStaleView", err)
	}
	if store.patchCount() != 0 {
		t.Fatalf("поздний ответ мутировал состояние после закрытия")
	}
}
