package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"minerdash/internal/config"
	"minerdash/internal/domain"
	"minerdash/internal/shared/clock"
)

type fakeBackend struct {
	mu      sync.Mutex
	profile domain.Profile
	tickets []domain.Ticket
}

func (f *fakeBackend) FetchProfile(ctx context.Context) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profile
	return &p, nil
}

func (f *fakeBackend) ClaimMining(ctx context.Context) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profile.Mining.LastCheckpoint = time.Now()
	p := f.profile
	return &p, nil
}

func (f *fakeBackend) ListTickets(ctx context.Context, limit int) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Ticket, len(f.tickets))
	copy(out, f.tickets)
	return out, nil
}

func (f *fakeBackend) CancelTicket(ctx context.Context, id string) (*domain.TicketPatch, error) {
	return &domain.TicketPatch{ID: id, Status: domain.StatusCancelled}, nil
}

func (f *fakeBackend) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return []domain.Transaction{
		{Type: "deposit", Amount: "100"},
		{Type: "mining", Amount: "1.5"},
	}, nil
}

func (f *fakeBackend) setTickets(ts []domain.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets = ts
}

func testConfig() *config.Config {
	return &config.Config{
		Platform: config.Platform{Timeout: time.Second},
		Poll:     config.Poll{Tickets: time.Second, Profile: time.Minute},
		Accrual:  config.Accrual{MinClaim: 0.0001},
	}
}

func newTestApp(t *testing.T, be *fakeBackend) (*App, *clock.Manual) {
	t.Helper()
	sched := clock.NewManual()
	app := New(testConfig(), be, nil, sched, zap.NewNop())
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(app.Stop)
	return app, sched
}

func TestStateAfterStart(t *testing.T) {
	be := &fakeBackend{
		profile: domain.Profile{
			UserID: "u1", Balance: "50", Currency: "USDT",
			Mining: domain.AccrualState{
				RatePerHour:    3.6,
				CycleSeconds:   86400,
				LastCheckpoint: time.Now().Add(-time.Hour),
			},
		},
		tickets: []domain.Ticket{
			{ID: "t1", Amount: "10", Currency: "USDT", Status: domain.StatusPending},
			{ID: "t2", Amount: "5", Currency: "USDT", Status: domain.StatusCompleted},
		},
	}
	app, _ := newTestApp(t, be)

	st, err := app.State(context.Background())
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if st.UserID != "u1" || st.Balance != "50" {
		t.Fatalf("state=%+v", st)
	}
	if !st.Accrual.Claimable || st.Accrual.Accrued < 3.5 {
		t.Fatalf("accrual=%+v, ожидали ~3.6 начисленных", st.Accrual)
	}
	if st.Stats.TotalCount != 2 || st.Stats.PendingCount != 1 {
		t.Fatalf("stats=%+v", st.Stats)
	}
	if len(st.Buckets) != 2 || st.Buckets[0].Status != "pending" {
		t.Fatalf("buckets=%+v", st.Buckets)
	}
}

func TestPollPicksUpNewTickets(t *testing.T) {
	be := &fakeBackend{
		profile: domain.Profile{Mining: domain.AccrualState{RatePerHour: 1, CycleSeconds: 3600, LastCheckpoint: time.Now()}},
	}
	app, sched := newTestApp(t, be)

	be.setTickets([]domain.Ticket{{ID: "новый", Amount: "1", Status: domain.StatusPending}})
	sched.Fire() // цикл опроса подхватывает свежий список

	st, _ := app.State(context.Background())
	if st.Stats.TotalCount != 1 {
		t.Fatalf("после опроса тикетов=%d want=1", st.Stats.TotalCount)
	}
}

func TestClaimThroughFacade(t *testing.T) {
	be := &fakeBackend{
		profile: domain.Profile{Mining: domain.AccrualState{
			RatePerHour:    10,
			CycleSeconds:   3600,
			LastCheckpoint: time.Now().Add(-time.Hour),
		}},
	}
	app, _ := newTestApp(t, be)

	resp, err := app.Claim(context.Background())
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if resp.Accrual.Accrued > 0.1 {
		t.Fatalf("после клейма accrued=%.4f, ожидали ~0", resp.Accrual.Accrued)
	}
}

func TestCancelThroughFacade(t *testing.T) {
	be := &fakeBackend{
		profile: domain.Profile{Mining: domain.AccrualState{RatePerHour: 1, CycleSeconds: 3600, LastCheckpoint: time.Now()}},
		tickets: []domain.Ticket{{ID: "t1", Amount: "10", Status: domain.StatusPending}},
	}
	app, _ := newTestApp(t, be)

	resp, err := app.CancelTicket(context.Background(), "t1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if resp.Status != "cancelled" {
		t.Fatalf("status=%s", resp.Status)
	}
	st, _ := app.State(context.Background())
	if st.Buckets[0].Status != "cancelled" {
		t.Fatalf("оптимистичный патч не применился: %+v", st.Buckets)
	}
}

func TestTransactionsSummary(t *testing.T) {
	be := &fakeBackend{
		profile: domain.Profile{Mining: domain.AccrualState{RatePerHour: 1, CycleSeconds: 3600, LastCheckpoint: time.Now()}},
	}
	app, _ := newTestApp(t, be)

	lines, err := app.Transactions(context.Background())
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(lines) != 2 || lines[0].Type != "deposit" || lines[0].Total != "100" {
		t.Fatalf("lines=%+v", lines)
	}
}
