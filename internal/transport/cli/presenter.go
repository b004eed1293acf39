package cli

import (
	"fmt"
	"time"

	"minerdash/internal/domain"
	"minerdash/internal/shared/format"
	"minerdash/internal/usecase/accrual"
	"minerdash/internal/usecase/tickets"
	"minerdash/internal/usecase/txsummary"
)

type Presenter struct{}

func NewPresenter() *Presenter { return &Presenter{} }

func (p *Presenter) ShowProfile(pr domain.Profile) {
	fmt.Printf("\n=== Профиль ===\n")
	fmt.Printf("Баланс: %s %s\n", pr.Balance, pr.Currency)
}

func (p *Presenter) ShowAccrual(v accrual.View) {
	fmt.Printf("\n=== Майнинг ===\n")
	fmt.Printf("Ставка: %s/час\n", format.FloatRU(v.RatePerHour))
	fmt.Printf("Накоплено: %s\n", format.FloatRU(v.Accrued))
	fmt.Printf("До конца цикла: %s\n", format.Countdown(v.Remaining))
}

func (p *Presenter) ShowBuckets(ts []domain.Ticket) {
	fmt.Printf("\n=== Депозитные тикеты ===\n")
	if len(ts) == 0 {
		fmt.Println("Тикетов нет.")
		return
	}
	for _, b := range tickets.OrderedBuckets(ts) {
		fmt.Printf("\n--- %s (%d шт., %s) ---\n", b.Status, b.Count, format.DecimalRU(b.Total))
		for _, t := range b.Tickets {
			line := fmt.Sprintf("  %s: %s %s, %s", t.ID, t.Amount, t.Currency, t.CreatedAt.Format("15:04 02.01.2006"))
			if t.Chain != "" {
				line += ", сеть " + t.Chain
			}
			if t.Status.Cancellable() {
				line += " [можно отменить]"
			}
			fmt.Println(line)
		}
	}
}

func (p *Presenter) ShowStats(st tickets.Stats) {
	fmt.Printf("\n=== Сводка ===\n")
	fmt.Printf("Всего: %d на %s\n", st.TotalCount, format.DecimalRU(st.TotalAmount))
	fmt.Printf("Ожидают: %d на %s\n", st.PendingCount, format.DecimalRU(st.PendingAmount))
	fmt.Printf("Завершены: %d на %s\n", st.CompletedCount, format.DecimalRU(st.CompletedAmount))
}

func (p *Presenter) ShowRates(rates map[string]float64, quote string) {
	if len(rates) == 0 {
		return
	}
	fmt.Printf("\n=== Курсы (%s) ===\n", quote)
	for coin, rate := range rates {
		fmt.Printf("  %s: %s\n", coin, format.FloatRU(rate))
	}
}

func (p *Presenter) ShowTxSummary(lines []txsummary.Line) {
	fmt.Printf("\n=== История кошелька ===\n")
	if len(lines) == 0 {
		fmt.Println("Операций нет.")
		return
	}
	for _, l := range lines {
		fmt.Printf("  %s: %d операций на %s\n", l.Type, l.Count, format.DecimalRU(l.Total))
	}
}

func (p *Presenter) ShowClaimed(v accrual.View) {
	fmt.Printf("Клейм выполнен. Новый чекпоинт: %s\n", v.CheckpointAt.Format("15:04:05 02.01.2006"))
}

func (p *Presenter) ShowCancelled(patch *domain.TicketPatch) {
	when := ""
	if patch.CancelledAt != nil {
		when = " (" + patch.CancelledAt.Format(time.TimeOnly) + ")"
	}
	fmt.Printf("Тикет %s отменён%s\n", patch.ID, when)
}

func (p *Presenter) ShowError(err error) {
	fmt.Printf("Ошибка: %v\n", err)
}
