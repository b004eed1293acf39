package session

import (
	"testing"

	"minerdash/internal/domain"
)

func TestLastReceivedWins(t *testing.T) {
	s := NewStore()
	s.SetTickets([]domain.Ticket{{ID: "1", Status: domain.StatusPending}})
	s.SetTickets([]domain.Ticket{{ID: "2", Status: domain.StatusCompleted}})

	ts := s.Tickets()
	if len(ts) != 1 || ts[0].ID != "2" {
		t.Fatalf("tickets=%+v, ожидали только последний ответ", ts)
	}
}

func TestPatchThenRefetch(t *testing.T) {
	s := NewStore()
	s.SetTickets([]domain.Ticket{{ID: "1", Status: domain.StatusPending}})

	s.ApplyTicketPatch(domain.TicketPatch{ID: "1", Status: domain.StatusCancelled})
	got, ok := s.Ticket("1")
	if !ok || got.Status != domain.StatusCancelled {
		t.Fatalf("после патча status=%s want=cancelled", got.Status)
	}

	// следующая полная загрузка авторитетна и перетирает локальный патч
	s.SetTickets([]domain.Ticket{{ID: "1", Status: domain.StatusPending}})
	got, _ = s.Ticket("1")
	if got.Status != domain.StatusPending {
		t.Fatalf("после перезагрузки status=%s want=pending", got.Status)
	}
}

func TestPatchUnknownTicketNoop(t *testing.T) {
	s := NewStore()
	s.SetTickets([]domain.Ticket{{ID: "1", Status: domain.StatusPending}})
	s.ApplyTicketPatch(domain.TicketPatch{ID: "999", Status: domain.StatusCancelled})
	if got, _ := s.Ticket("1"); got.Status != domain.StatusPending {
		t.Fatalf("патч чужого id задел тикет: %+v", got)
	}
}

func TestTicketsReturnsCopy(t *testing.T) {
	s := NewStore()
	s.SetTickets([]domain.Ticket{{ID: "1", Status: domain.StatusPending}})
	out := s.Tickets()
	out[0].Status = domain.StatusRejected
	if got, _ := s.Ticket("1"); got.Status != domain.StatusPending {
		t.Fatalf("мутация копии задела кэш")
	}
}
