package domain

import (
	"context"
	"time"
)

// Базовые доменные сущности

// AccrualState — состояние начисления майнинга из снапшота бэкенда.
// Сам расчёт ведёт бэкенд; клиент лишь проецирует его на текущее время.
type AccrualState struct {
	RatePerHour    float64   // ставка начисления, монет в час (>= 0)
	CycleSeconds   int64     // длина одного цикла в секундах (> 0)
	LastCheckpoint time.Time // момент последнего клейма
}

// Profile — профиль пользователя платформы (баланс + параметры майнинга).
type Profile struct {
	UserID   string
	Balance  string // сырое значение от бэкенда, как и суммы тикетов
	Currency string
	Mining   AccrualState
}

type TicketStatus string

const (
	StatusPending      TicketStatus = "pending"
	StatusManualReview TicketStatus = "awaiting_manual_review"
	StatusProcessing   TicketStatus = "processing"
	StatusCompleted    TicketStatus = "completed"
	StatusExpired      TicketStatus = "expired"
	StatusCancelled    TicketStatus = "cancelled"
	StatusRejected     TicketStatus = "rejected"
)

// StatusOrder — канонический порядок статусов для отображения.
// Неизвестные статусы идут после него.
var StatusOrder = []TicketStatus{
	StatusPending,
	StatusManualReview,
	StatusProcessing,
	StatusCompleted,
	StatusExpired,
	StatusCancelled,
	StatusRejected,
}

// Terminal — статус больше не изменится.
func (s TicketStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusExpired, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Cancellable — клиентская проверка перед запросом отмены.
// Источник истины — бэкенд, здесь только быстрый отказ.
func (s TicketStatus) Cancellable() bool {
	return s == StatusPending || s == StatusManualReview
}

// PendingLike — статусы, попадающие в "ожидающие" в сводке.
func (s TicketStatus) PendingLike() bool {
	return s == StatusPending || s == StatusManualReview || s == StatusProcessing
}

// Ticket — депозитный тикет. Создаётся и меняется только бэкендом,
// клиент читает и может запросить отмену.
type Ticket struct {
	ID         string
	Amount     string // сырое значение; некорректное считаем нулём при суммировании
	Currency   string
	Status     TicketStatus
	CreatedAt  time.Time
	ExpiresAt  *time.Time
	MethodType string // automatic | manual
	MethodName string
	Chain      string
}

// TicketPatch — поля, которые бэкенд вернул после отмены тикета.
// Применяется точечно к одному тикету; полный список обновится при следующей загрузке.
type TicketPatch struct {
	ID          string
	Status      TicketStatus
	CancelledAt *time.Time
}

// Transaction — запись из истории кошелька (для сводок).
type Transaction struct {
	ID        string
	Type      string // deposit | withdrawal | mining | referral_bonus | ...
	Amount    string
	Currency  string
	CreatedAt time.Time
}

// Контракт клиента платформы
type Backend interface {
	FetchProfile(ctx context.Context) (*Profile, error)
	ClaimMining(ctx context.Context) (*Profile, error)
	ListTickets(ctx context.Context, limit int) ([]Ticket, error)
	CancelTicket(ctx context.Context, id string) (*TicketPatch, error)
	ListTransactions(ctx context.Context) ([]Transaction, error)
}
