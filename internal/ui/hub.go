package ui

import "sync"

// subscriberBuffer is the number of views buffered per subscriber.
// A subscriber that falls further behind misses intermediate views.
const subscriberBuffer = 16

// hub fans rendered views out to subscribers.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan View
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan View)}
}

// subscribe registers a listener and returns its channel and a cancel func.
func (h *hub) subscribe() (<-chan View, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan View, subscriberBuffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// publish sends v to every subscriber without blocking.
func (h *hub) publish(v View) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// closeAll closes every subscriber channel.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
