package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"minerdash/internal/adapters/market"
	"minerdash/internal/config"
	"minerdash/internal/domain"
	"minerdash/internal/shared/clock"
	"minerdash/internal/shared/format"
	"minerdash/internal/shared/retry"
	"minerdash/internal/transport/httpapi"
	"minerdash/internal/usecase/accrual"
	"minerdash/internal/usecase/session"
	"minerdash/internal/usecase/tickets"
	"minerdash/internal/usecase/txsummary"
)

// App связывает клиента платформы, стор сессии, проектор начисления и
// агрегатор тикетов и реализует httpapi.Facade.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	backend domain.Backend
	market  market.Source // nil, если курсы выключены
	sched   clock.Scheduler

	store *session.Store
	proj  *accrual.Projector
	agg   *tickets.Aggregator

	mu    sync.Mutex
	rates map[string]float64
	stops []func()
}

func New(cfg *config.Config, backend domain.Backend, mkt market.Source, sched clock.Scheduler, log *zap.Logger) *App {
	store := session.NewStore()
	return &App{
		cfg:     cfg,
		log:     log,
		backend: backend,
		market:  mkt,
		sched:   sched,
		store:   store,
		proj:    accrual.NewProjector(backend, cfg.Accrual.MinClaim, log),
		agg:     tickets.NewAggregator(backend, store, log),
	}
}

// Start делает начальную загрузку и запускает периодику:
// секундный тик проекции и фоновые обновления тикетов/профиля/курсов.
func (a *App) Start(ctx context.Context) error {
	err := retry.WithRetry(ctx, 3, time.Second, func() error {
		return a.loadSnapshot(ctx)
	})
	if err != nil {
		return err
	}
	a.refreshRates(ctx)

	a.stops = append(a.stops,
		a.sched.Every(time.Second, a.proj.Tick),
		a.sched.Every(a.cfg.Poll.Tickets, func() { a.refreshTickets(context.Background()) }),
		a.sched.Every(a.cfg.Poll.Profile, func() { a.refreshProfile(context.Background()) }),
	)
	if a.market != nil {
		a.stops = append(a.stops,
			a.sched.Every(a.cfg.Poll.Profile, func() { a.refreshRates(context.Background()) }),
		)
	}
	return nil
}

// Stop закрывает представление: тики и поздние ответы дальше игнорируются.
func (a *App) Stop() {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	a.proj.Close()
	a.agg.Close()
}

func (a *App) loadSnapshot(ctx context.Context) error {
	p, err := a.backend.FetchProfile(ctx)
	if err != nil {
		return err
	}
	a.store.SetProfile(*p)
	a.proj.Init(p.Mining, time.Now())

	ts, err := a.backend.ListTickets(ctx, 50)
	if err != nil {
		return err
	}
	a.store.SetTickets(ts)
	return nil
}

func (a *App) refreshTickets(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, a.cfg.Platform.Timeout)
	defer cancel()
	ts, err := a.backend.ListTickets(reqCtx, 50)
	if err != nil {
		a.log.Warn("фоновое обновление тикетов не удалось", zap.Error(err))
		return
	}
	// порядок записи = порядок прихода: последний полученный ответ побеждает
	a.store.SetTickets(ts)
}

func (a *App) refreshProfile(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, a.cfg.Platform.Timeout)
	defer cancel()
	p, err := a.backend.FetchProfile(reqCtx)
	if err != nil {
		a.log.Warn("фоновое обновление профиля не удалось", zap.Error(err))
		return
	}
	a.store.SetProfile(*p)
	// результат клейма авторитетнее фонового снапшота, поэтому InitIfIdle
	a.proj.InitIfIdle(p.Mining, time.Now())
}

func (a *App) refreshRates(ctx context.Context) {
	if a.market == nil {
		return
	}
	rates, err := a.market.Rates(ctx, a.heldCurrencies())
	if err != nil {
		a.log.Warn("курсы недоступны", zap.Error(err))
		return
	}
	a.mu.Lock()
	a.rates = rates
	a.mu.Unlock()
}

func (a *App) heldCurrencies() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(c string) {
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if p, ok := a.store.Profile(); ok {
		add(p.Currency)
	}
	for _, t := range a.store.Tickets() {
		add(t.Currency)
	}
	return out
}

// ===== httpapi.Facade =====

func (a *App) State(ctx context.Context) (httpapi.StateResponse, error) {
	p, _ := a.store.Profile()
	ts := a.store.Tickets()
	v := a.proj.View()

	a.mu.Lock()
	rates := a.rates
	a.mu.Unlock()

	return httpapi.StateResponse{
		UserID:      p.UserID,
		Balance:     p.Balance,
		Currency:    p.Currency,
		Accrual:     a.accrualView(v),
		Buckets:     bucketViews(ts),
		Stats:       statsView(tickets.Summarize(ts)),
		Rates:       rates,
		RefreshedAt: a.store.TicketsAt(),
	}, nil
}

func (a *App) Claim(ctx context.Context) (httpapi.ClaimResponse, error) {
	v, err := a.proj.Claim(ctx)
	if err != nil {
		return httpapi.ClaimResponse{}, err
	}
	return httpapi.ClaimResponse{Accrual: a.accrualView(v)}, nil
}

func (a *App) CancelTicket(ctx context.Context, id string) (httpapi.CancelResponse, error) {
	patch, err := a.agg.Cancel(ctx, id)
	if err != nil {
		return httpapi.CancelResponse{}, err
	}
	return httpapi.CancelResponse{
		TicketID: patch.ID,
		Status:   string(patch.Status),
	}, nil
}

func (a *App) Transactions(ctx context.Context) ([]httpapi.TxLine, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.cfg.Platform.Timeout)
	defer cancel()
	txs, err := a.backend.ListTransactions(reqCtx)
	if err != nil {
		return nil, err
	}
	lines := txsummary.ByType(txs)
	out := make([]httpapi.TxLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, httpapi.TxLine{Type: l.Type, Count: l.Count, Total: l.Total.String()})
	}
	return out, nil
}

// ===== Маппинг в типы httpapi =====

func (a *App) accrualView(v accrual.View) httpapi.AccrualView {
	minClaim := a.cfg.Accrual.MinClaim
	if minClaim <= 0 {
		minClaim = accrual.DefaultMinClaim
	}
	return httpapi.AccrualView{
		RatePerHour:  v.RatePerHour,
		Accrued:      v.Accrued,
		Remaining:    v.Remaining,
		Countdown:    format.Countdown(v.Remaining),
		CycleSeconds: v.CycleSeconds,
		Claimable:    v.Accrued >= minClaim,
	}
}

func bucketViews(ts []domain.Ticket) []httpapi.BucketView {
	buckets := tickets.OrderedBuckets(ts)
	out := make([]httpapi.BucketView, 0, len(buckets))
	for _, b := range buckets {
		rows := make([]httpapi.TicketRow, 0, len(b.Tickets))
		for _, t := range b.Tickets {
			rows = append(rows, httpapi.TicketRow{
				ID:         t.ID,
				Amount:     t.Amount,
				Currency:   t.Currency,
				Status:     string(t.Status),
				CreatedAt:  t.CreatedAt,
				ExpiresAt:  t.ExpiresAt,
				MethodType: t.MethodType,
				MethodName: t.MethodName,
				Chain:      t.Chain,
				Cancelable: t.Status.Cancellable(),
			})
		}
		out = append(out, httpapi.BucketView{
			Status: string(b.Status),
			Count:  b.Count,
			Total:  b.Total.String(),
			Rows:   rows,
		})
	}
	return out
}

func statsView(st tickets.Stats) httpapi.StatsView {
	return httpapi.StatsView{
		TotalCount:      st.TotalCount,
		TotalAmount:     st.TotalAmount.String(),
		PendingCount:    st.PendingCount,
		PendingAmount:   st.PendingAmount.String(),
		CompletedCount:  st.CompletedCount,
		CompletedAmount: st.CompletedAmount.String(),
	}
}
