package console

import (
	"context"
	"time"

	"go.uber.org/zap"

	"minerdash/internal/adapters/market"
	"minerdash/internal/adapters/platform"
	"minerdash/internal/config"
	"minerdash/internal/transport/cli"
	"minerdash/internal/usecase/accrual"
	"minerdash/internal/usecase/session"
	"minerdash/internal/usecase/tickets"
	"minerdash/internal/usecase/txsummary"
)

// Run — интерактивный консольный сценарий:
// 1) загрузка снапшота (профиль + тикеты);
// 2) печать проекции начисления, корзин и сводки;
// 3) действия пользователя: обновить / клейм / отменить тикет / история.
func Run(cfg *config.Config, log *zap.Logger) error {
	backend := platform.New(cfg.Platform.BaseURL, cfg.Platform.Token, cfg.Platform.Timeout, log)
	store := session.NewStore()
	proj := accrual.NewProjector(backend, cfg.Accrual.MinClaim, log)
	agg := tickets.NewAggregator(backend, store, log)
	pr := cli.NewPresenter()
	reader := cli.NewReader()

	var mkt market.Source
	if cfg.Market.Enabled {
		mkt = market.NewBinance(cfg.Market.Quote, log)
	}

	ctx := context.Background()
	defer proj.Close()
	defer agg.Close()

	refresh := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, cfg.Platform.Timeout)
		defer cancel()

		p, err := backend.FetchProfile(reqCtx)
		if err != nil {
			return err
		}
		store.SetProfile(*p)
		proj.InitIfIdle(p.Mining, time.Now())

		ts, err := backend.ListTickets(reqCtx, 50)
		if err != nil {
			return err
		}
		store.SetTickets(ts)

		pr.ShowProfile(*p)
		pr.ShowAccrual(proj.View())
		pr.ShowBuckets(ts)
		pr.ShowStats(tickets.Summarize(ts))

		if mkt != nil {
			if rates, err := mkt.Rates(reqCtx, []string{p.Currency}); err == nil {
				pr.ShowRates(rates, cfg.Market.Quote)
			}
		}
		return nil
	}

	if err := refresh(); err != nil {
		return err
	}

	for {
		switch cli.AskAction(reader) {
		case cli.ActionRefresh:
			if err := refresh(); err != nil {
				pr.ShowError(err)
			}
		case cli.ActionClaim:
			v, err := proj.Claim(ctx)
			if err != nil {
				pr.ShowError(err)
				continue
			}
			pr.ShowClaimed(v)
			if err := refresh(); err != nil {
				pr.ShowError(err)
			}
		case cli.ActionCancel:
			id := cli.AskTicketID(reader)
			if id == "" {
				continue
			}
			patch, err := agg.Cancel(ctx, id)
			if err != nil {
				pr.ShowError(err)
				continue
			}
			pr.ShowCancelled(patch)
			pr.ShowBuckets(store.Tickets())
		case cli.ActionTx:
			txs, err := backend.ListTransactions(ctx)
			if err != nil {
				pr.ShowError(err)
				continue
			}
			pr.ShowTxSummary(txsummary.ByType(txs))
		case cli.ActionQuit:
			return nil
		}
	}
}
