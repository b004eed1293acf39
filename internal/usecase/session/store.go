package session

import (
	"sync"
	"time"

	"minerdash/internal/domain"
)

// Store — явный контейнер состояния сессии для одного представления.
// Внедряется зависимостью, а не живёт синглтоном на уровне пакета:
// тестам нужны изолированные экземпляры.
//
// Владелец данных — бэкенд; здесь read-through кэш. Политика слияния:
// список тикетов перезаписывается последним ПОЛУЧЕННЫМ ответом,
// точечный патч отмены живёт до следующей полной загрузки.
type Store struct {
	mu        sync.RWMutex
	profile   *domain.Profile
	tickets   []domain.Ticket
	ticketsAt time.Time
	profileAt time.Time
}

func NewStore() *Store { return &Store{} }

func (s *Store) SetProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
	s.profileAt = time.Now()
}

func (s *Store) Profile() (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return domain.Profile{}, false
	}
	return *s.profile, true
}

// SetTickets заменяет список целиком. Вызывается в порядке прихода ответов,
// поэтому "последний полученный побеждает" выполняется само собой.
func (s *Store) SetTickets(ts []domain.Ticket) {
	cp := make([]domain.Ticket, len(ts))
	copy(cp, ts)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = cp
	s.ticketsAt = time.Now()
}

// Tickets возвращает копию: вызывающий не может мутировать кэш.
func (s *Store) Tickets() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]domain.Ticket, len(s.tickets))
	copy(cp, s.tickets)
	return cp
}

func (s *Store) Ticket(id string) (domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// ApplyTicketPatch — оптимистичное обновление одного тикета после отмены.
func (s *Store) ApplyTicketPatch(p domain.TicketPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID != p.ID {
			continue
		}
		if p.Status != "" {
			s.tickets[i].Status = p.Status
		}
		return
	}
}

// TicketsAt — время последней полной загрузки (для индикации свежести).
func (s *Store) TicketsAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticketsAt
}
