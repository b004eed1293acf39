package platform

import (
	"encoding/json"
	"strings"
	"time"

	"minerdash/internal/domain"
)

// Суммы бэкенд присылает то числом, то строкой — храним как строку,
// лояльный разбор оставляем доменному слою.
func rawString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	return s
}

// isoTime терпит и RFC3339, и unix-миллисекунды.
type isoTime time.Time

func (t *isoTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*t = isoTime(time.Time{})
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		*t = isoTime(parsed)
		return nil
	}
	var ms int64
	if err := json.Unmarshal([]byte(s), &ms); err == nil && ms > 0 {
		*t = isoTime(time.UnixMilli(ms))
		return nil
	}
	// непонятный формат времени не должен ронять весь ответ
	*t = isoTime(time.Time{})
	return nil
}

type profileJSON struct {
	ID                  string          `json:"id"`
	Balance             json.RawMessage `json:"balance"`
	Currency            string          `json:"currency"`
	LastMiningClaim     isoTime         `json:"lastMiningClaim"`
	EffectiveMiningRate float64         `json:"effectiveMiningRate"`
	MiningCycleSeconds  int64           `json:"miningCycleSeconds"`
}

func (p profileJSON) toDomain() domain.Profile {
	return domain.Profile{
		UserID:   p.ID,
		Balance:  rawString(p.Balance),
		Currency: p.Currency,
		Mining: domain.AccrualState{
			RatePerHour:    p.EffectiveMiningRate,
			CycleSeconds:   p.MiningCycleSeconds,
			LastCheckpoint: time.Time(p.LastMiningClaim),
		},
	}
}

type ticketJSON struct {
	TicketID   string          `json:"ticketId"`
	Amount     json.RawMessage `json:"amount"`
	Currency   string          `json:"currency"`
	Status     string          `json:"status"`
	CreatedAt  isoTime         `json:"createdAt"`
	ExpiresAt  *isoTime        `json:"expiresAt"`
	MethodType string          `json:"methodType"`
	MethodName string          `json:"methodName"`
	Chain      string          `json:"chain"`
}

func (t ticketJSON) toDomain() domain.Ticket {
	out := domain.Ticket{
		ID:         t.TicketID,
		Amount:     rawString(t.Amount),
		Currency:   t.Currency,
		Status:     domain.TicketStatus(t.Status),
		CreatedAt:  time.Time(t.CreatedAt),
		MethodType: t.MethodType,
		MethodName: t.MethodName,
		Chain:      t.Chain,
	}
	if t.ExpiresAt != nil {
		exp := time.Time(*t.ExpiresAt)
		if !exp.IsZero() {
			out.ExpiresAt = &exp
		}
	}
	return out
}
