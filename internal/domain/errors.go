package domain

import (
	"errors"
	"fmt"
)

// Классы ошибок ядра. Сетевые ошибки и нарушения предусловий показываем
// пользователю, остальные два — чистый control flow.
var (
	// ErrAlreadyInProgress — для этого ресурса уже есть запрос в полёте.
	ErrAlreadyInProgress = errors.New("операция уже выполняется")

	// ErrStaleView — ответ пришёл после закрытия представления; результат отбрасываем.
	ErrStaleView = errors.New("представление закрыто")

	// ErrInvalidPrecondition — операция отклонена локально, запрос не отправлялся.
	ErrInvalidPrecondition = errors.New("операция недоступна")
)

// APIError — неуспешный ответ бэкенда. Message показываем дословно,
// своих формулировок не придумываем.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("ошибка сервера (HTTP %d)", e.Status)
}
