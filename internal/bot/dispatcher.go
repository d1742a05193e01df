package bot

import (
	"sync"

	"github.com/akozlov/habitbot/internal/logger"
)

// Dispatcher fans inbound events out to one worker per user, so events for a
// single user are handled in arrival order while users never block each
// other. Store and delivery failures are logged here; the user's
// conversation state is left as the handler left it, so a retry picks up
// where the failed event did.
type Dispatcher struct {
	handler *Handler

	mu     sync.Mutex
	queues map[int64]chan Event
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(h *Handler) *Dispatcher {
	return &Dispatcher{
		handler: h,
		queues:  make(map[int64]chan Event),
	}
}

// Dispatch enqueues an event for its user's worker, starting the worker on
// first contact. Events dispatched after Close are dropped. The enqueue
// happens under the mutex so a concurrent Close cannot close the channel
// mid-send; workers drain without the mutex, so a full queue only delays
// dispatching, it cannot deadlock.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	q, ok := d.queues[ev.UserID]
	if !ok {
		q = make(chan Event, 16)
		d.queues[ev.UserID] = q
		d.wg.Add(1)
		go d.work(q)
	}
	q <- ev
}

func (d *Dispatcher) work(q chan Event) {
	defer d.wg.Done()
	for ev := range q {
		if err := d.handler.Handle(ev); err != nil {
			logger.Error("Event handling failed", "user", ev.UserID, "error", err)
		}
	}
}

// Close stops accepting events and waits for in-flight ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
