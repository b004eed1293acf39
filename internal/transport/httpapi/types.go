package httpapi

import "time"

type AccrualView struct {
	RatePerHour  float64 `json:"ratePerHour"`
	Accrued      float64 `json:"accrued"`
	Remaining    int64   `json:"secondsRemaining"`
	Countdown    string  `json:"countdown"` // "чч:мм:сс"
	CycleSeconds int64   `json:"cycleSeconds"`
	Claimable    bool    `json:"claimable"`
}

type TicketRow struct {
	ID         string     `json:"ticketId"`
	Amount     string     `json:"amount"`
	Currency   string     `json:"currency"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	MethodType string     `json:"methodType"`
	MethodName string     `json:"methodName"`
	Chain      string     `json:"chain,omitempty"`
	Cancelable bool       `json:"cancelable"`
}

type BucketView struct {
	Status string      `json:"status"`
	Count  int         `json:"count"`
	Total  string      `json:"totalAmount"`
	Rows   []TicketRow `json:"tickets"`
}

type StatsView struct {
	TotalCount      int    `json:"totalCount"`
	TotalAmount     string `json:"totalAmount"`
	PendingCount    int    `json:"pendingCount"`
	PendingAmount   string `json:"pendingAmount"`
	CompletedCount  int    `json:"completedCount"`
	CompletedAmount string `json:"completedAmount"`
}

type StateResponse struct {
	UserID      string             `json:"userId"`
	Balance     string             `json:"balance"`
	Currency    string             `json:"currency"`
	Accrual     AccrualView        `json:"accrual"`
	Buckets     []BucketView       `json:"buckets"`
	Stats       StatsView          `json:"stats"`
	Rates       map[string]float64 `json:"rates,omitempty"`
	RefreshedAt time.Time          `json:"refreshedAt"`
}

type ClaimResponse struct {
	Accrual AccrualView `json:"accrual"`
}

type CancelResponse struct {
	TicketID string `json:"ticketId"`
	Status   string `json:"status"`
}

type TxLine struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
	Total string `json:"total"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
