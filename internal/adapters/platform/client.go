package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"minerdash/internal/domain"
)

// Client — HTTP-клиент REST API платформы. Вся бизнес-логика на стороне
// бэкенда; клиент читает снапшоты и отправляет действия пользователя.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

func New(baseURL, token string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// do выполняет запрос и декодирует тело в out. Неуспешный статус превращается
// в domain.APIError с дословным message из ответа.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("platform: ошибка кодирования тела: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("platform: ошибка запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "minerdash/client")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		// ключ идемпотентности на мутирующие вызовы (клейм, отмена)
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform: ошибка запроса: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("platform: ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &domain.APIError{Status: resp.StatusCode}
		var em struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &em) == nil {
			apiErr.Message = em.Message
		}
		c.log.Debug("platform: неуспешный ответ",
			zap.String("путь", path), zap.Int("статус", resp.StatusCode))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("platform: ошибка парсинга JSON: %w", err)
	}
	return nil
}

// ===== /user/profile =====

func (c *Client) FetchProfile(ctx context.Context) (*domain.Profile, error) {
	var resp struct {
		Data profileJSON `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/profile", nil, &resp); err != nil {
		return nil, err
	}
	p := resp.Data.toDomain()
	return &p, nil
}

// ===== /wallet/claim =====

func (c *Client) ClaimMining(ctx context.Context) (*domain.Profile, error) {
	var resp struct {
		User profileJSON `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/wallet/claim", nil, &resp); err != nil {
		return nil, err
	}
	p := resp.User.toDomain()
	return &p, nil
}

// ===== /deposits/my-tickets =====

func (c *Client) ListTickets(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	var resp struct {
		Data []ticketJSON `json:"data"`
	}
	path := fmt.Sprintf("/deposits/my-tickets?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Ticket, 0, len(resp.Data))
	for _, t := range resp.Data {
		out = append(out, t.toDomain())
	}
	return out, nil
}

// ===== /deposits/ticket/{id}/cancel =====

func (c *Client) CancelTicket(ctx context.Context, id string) (*domain.TicketPatch, error) {
	var resp struct {
		Data struct {
			Status      string   `json:"status"`
			CancelledAt *isoTime `json:"cancelledAt"`
		} `json:"data"`
		Message string `json:"message"`
	}
	path := fmt.Sprintf("/deposits/ticket/%s/cancel", id)
	if err := c.do(ctx, http.MethodPut, path, nil, &resp); err != nil {
		return nil, err
	}
	patch := &domain.TicketPatch{
		ID:     id,
		Status: domain.TicketStatus(resp.Data.Status),
	}
	if resp.Data.CancelledAt != nil {
		t := time.Time(*resp.Data.CancelledAt)
		patch.CancelledAt = &t
	}
	return patch, nil
}

// ===== /user/transactions =====

func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var resp []struct {
		ID        string          `json:"id"`
		Type      string          `json:"type"`
		Amount    json.RawMessage `json:"amount"`
		Currency  string          `json:"currency"`
		CreatedAt isoTime         `json:"createdAt"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/transactions", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(resp))
	for _, tx := range resp {
		out = append(out, domain.Transaction{
			ID:        tx.ID,
			Type:      tx.Type,
			Amount:    rawString(tx.Amount),
			Currency:  tx.Currency,
			CreatedAt: time.Time(tx.CreatedAt),
		})
	}
	return out, nil
}
