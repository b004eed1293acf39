package accrual

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"minerdash/internal/domain"
)

// DefaultMinClaim — минимальная сумма для клейма (политика платформы).
const DefaultMinClaim = 0.0001

// View — проекция начисления на текущий момент. Чистое значение,
// считается локально и не требует похода на сервер каждую секунду.
type View struct {
	RatePerHour  float64
	CycleSeconds int64
	Accrued      float64 // накоплено с последнего клейма
	Remaining    int64   // секунд до конца текущего цикла
	CheckpointAt time.Time
}

// Project строит проекцию из снапшота бэкенда.
// Отрицательный elapsed (рассинхрон часов) считаем нулём, не ошибкой.
func Project(st domain.AccrualState, now time.Time) View {
	rate := st.RatePerHour
	if rate < 0 {
		rate = 0
	}
	cycle := st.CycleSeconds
	if cycle <= 0 {
		cycle = 86400
	}
	elapsed := int64(now.Sub(st.LastCheckpoint).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	pos := elapsed % cycle
	return View{
		RatePerHour:  rate,
		CycleSeconds: cycle,
		Accrued:      rate / 3600 * float64(elapsed),
		Remaining:    cycle - pos,
		CheckpointAt: st.LastCheckpoint,
	}
}

// Advance продвигает проекцию на delta секунд.
// Граница цикла чисто косметическая: таймер перематывается, начисление не трогаем.
// Начисление сбрасывает только клейм.
func Advance(v View, delta int64) View {
	if delta <= 0 {
		return v
	}
	v.Accrued += v.RatePerHour / 3600 * float64(delta)
	v.Remaining -= delta
	if v.Remaining < 0 {
		// последовательность ..., 1, 0, C, C-1, ...
		v.Remaining = v.CycleSeconds - ((-v.Remaining - 1) % v.CycleSeconds)
	}
	return v
}

// ClaimBackend — нужная проектору часть клиента платформы.
type ClaimBackend interface {
	ClaimMining(ctx context.Context) (*domain.Profile, error)
}

// Projector владеет одной проекцией на одно смонтированное представление.
// Тикает от единственного внешнего планировщика, клейм — строго по одному в полёте.
type Projector struct {
	mu       sync.Mutex
	view     View
	started  bool
	claiming bool
	closed   bool

	minClaim float64
	backend  ClaimBackend
	log      *zap.Logger
}

func NewProjector(backend ClaimBackend, minClaim float64, log *zap.Logger) *Projector {
	if minClaim <= 0 {
		minClaim = DefaultMinClaim
	}
	return &Projector{minClaim: minClaim, backend: backend, log: log}
}

// Init (повторно) инициализирует проекцию из свежего снапшота.
// Локально натиканные значения при этом отбрасываются.
func (p *Projector) Init(st domain.AccrualState, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.view = Project(st, now)
	p.started = true
}

// InitIfIdle — то же, но фоновое обновление профиля не должно
// перетирать состояние, пока клейм в полёте: его результат авторитетнее.
func (p *Projector) InitIfIdle(st domain.AccrualState, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.claiming {
		return
	}
	p.view = Project(st, now)
	p.started = true
}

// Tick — один секундный тик от планировщика.
func (p *Projector) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.started {
		return
	}
	p.view = Advance(p.view, 1)
}

func (p *Projector) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Claim отправляет ровно один запрос клейма. Повторный вызов до ответа
// отклоняется локально (двойной сабмит: клавиатура + клик).
// При ошибке проекция не трогается; оптимистичного сброса нет.
func (p *Projector) Claim(ctx context.Context) (View, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return View{}, domain.ErrStaleView
	}
	if p.claiming {
		p.mu.Unlock()
		return View{}, domain.ErrAlreadyInProgress
	}
	if p.view.Accrued < p.minClaim {
		p.mu.Unlock()
		return View{}, domain.ErrInvalidPrecondition
	}
	p.claiming = true
	p.mu.Unlock()

	profile, err := p.backend.ClaimMining(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.claiming = false
	if p.closed {
		// ответ пришёл после закрытия представления — молча отбрасываем
		return View{}, domain.ErrStaleView
	}
	if err != nil {
		p.log.Warn("клейм не прошёл", zap.Error(err))
		return p.view, err
	}
	p.view = Project(profile.Mining, time.Now())
	p.log.Info("клейм выполнен",
		zap.Float64("ставка", profile.Mining.RatePerHour),
		zap.Time("чекпоинт", profile.Mining.LastCheckpoint))
	return p.view, nil
}

// Close помечает представление закрытым: тики и поздние ответы игнорируются.
// Остановить сам планировщик обязан вызывающий.
func (p *Projector) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}
