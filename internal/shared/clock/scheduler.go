package clock

import (
	"sync"
	"time"
)

// Scheduler вызывает fn с фиксированным периодом, пока не вызван stop.
// На каждое представление — ровно один источник тиков, чтобы тики шли строго по порядку.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func())
}

// Interval — боевая реализация на time.Ticker.
type Interval struct{}

func (Interval) Every(d time.Duration, fn func()) (stop func()) {
	t := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-t.C:
				fn()
			case <-done:
				t.Stop()
				return
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

// Manual — ручной планировщик для тестов: тики выдаются вызовом Fire.
type Manual struct {
	mu  sync.Mutex
	seq int
	fns map[int]func()
}

func NewManual() *Manual {
	return &Manual{fns: make(map[int]func())}
}

func (m *Manual) Every(_ time.Duration, fn func()) (stop func()) {
	m.mu.Lock()
	m.seq++
	id := m.seq
	m.fns[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.fns, id)
		m.mu.Unlock()
	}
}

// Fire — один тик всем активным подписчикам.
func (m *Manual) Fire() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.fns))
	for _, fn := range m.fns {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
