package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"minerdash/internal/domain"
)

// Facade — то, что дашборду нужно от приложения.
type Facade interface {
	State(ctx context.Context) (StateResponse, error)
	Claim(ctx context.Context) (ClaimResponse, error)
	CancelTicket(ctx context.Context, id string) (CancelResponse, error)
	Transactions(ctx context.Context) ([]TxLine, error)
}

type Server struct {
	addr   string
	app    Facade
	log    *zap.Logger
	server *http.Server
}

func New(addr string, app Facade, log *zap.Logger) *Server {
	return &Server{addr: addr, app: app, log: log}
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/claim", s.handleClaim).Methods(http.MethodPost)
	r.HandleFunc("/api/tickets/{id}/cancel", s.handleCancel).Methods(http.MethodPost)
	r.HandleFunc("/api/transactions", s.handleTransactions).Methods(http.MethodGet)

	return withCORS(r)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("HTTP-сервер запущен", zap.String("addr", s.addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp, err := s.app.State(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	resp, err := s.app.Claim(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "не указан id тикета"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	resp, err := s.app.CancelTicket(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	lines, err := s.app.Transactions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// writeError переводит доменные ошибки в HTTP-статусы.
// Сообщение бэкенда уходит наружу дословно.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrAlreadyInProgress):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidPrecondition):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.As(err, &apiErr):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: apiErr.Error()})
	default:
		s.log.Error("внутренняя ошибка обработчика", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
