package ratelimit

import (
	"sync"
	"time"
)

// window holds the admitted-event timestamps for one key, ascending.
type window struct {
	mu     sync.Mutex
	events []time.Time
}

// Limiter is a per-key sliding-window rate limiter. Each key gets at most
// `limit` admitted events per trailing `window` duration. State is held in
// memory only; a restart clears all windows. Windows are created lazily and
// live for the process lifetime — a known limitation, acceptable for the
// bounded identity set this service handles.
type Limiter struct {
	mu      sync.Mutex // guards the map, not the windows
	windows map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewLimiter(limit int, windowDur time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		window:  windowDur,
		now:     time.Now,
	}
}

// Admit decides whether one more event for key is allowed now, recording the
// event if so. Stale timestamps are evicted first: every entry strictly
// older than the window is dropped from the front (the slice is ascending),
// so a borderline event exactly window-old still counts. A rejected call
// records nothing. The evict-count-append sequence is a single critical
// section per key, so concurrent calls for the same key cannot both admit
// the (limit+1)-th event.
func (l *Limiter) Admit(key string) bool {
	w := l.getWindow(key)
	now := l.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := 0
	for cutoff < len(w.events) && now.Sub(w.events[cutoff]) > l.window {
		cutoff++
	}
	if cutoff > 0 {
		w.events = append(w.events[:0], w.events[cutoff:]...)
	}

	if len(w.events) >= l.limit {
		return false
	}

	w.events = append(w.events, now)
	return true
}

// Pending returns the number of recorded events currently inside the window
// for key. Stale entries are not counted.
func (l *Limiter) Pending(key string) int {
	w := l.getWindow(key)
	now := l.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for _, ts := range w.events {
		if now.Sub(ts) <= l.window {
			n++
		}
	}
	return n
}

func (l *Limiter) getWindow(key string) *window {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		w = &window{}
		l.windows[key] = w
	}
	return w
}
