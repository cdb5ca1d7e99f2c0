package store

import (
	"sync"
	"time"

	"postbox/internal/domain"
)

// MailboxStore holds per-username FIFO queues of undelivered messages.
// Blocked Dequeue callers are woken by a condition variable broadcast on
// every Enqueue rather than by polling; the blocking contract (wait until a
// message exists or the deadline passes) is unchanged.
type MailboxStore struct {
	mu     sync.Mutex
	cond   *sync.Cond
	boxes  map[domain.Username][]domain.Inbound
	closed bool
}

// NewMailboxStore returns an empty MailboxStore.
func NewMailboxStore() *MailboxStore {
	s := &MailboxStore{boxes: make(map[domain.Username][]domain.Inbound)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Enqueue appends msg to recipient's queue, creating it on first delivery,
// and wakes any blocked Dequeue callers.
func (s *MailboxStore) Enqueue(recipient domain.Username, msg domain.Inbound) {
	s.mu.Lock()
	s.boxes[recipient] = append(s.boxes[recipient], msg)
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Dequeue removes and returns the oldest message queued for username,
// blocking until one arrives. A zero deadline blocks indefinitely; otherwise
// ErrTimeout is returned once it elapses. ErrStoreClosed is returned if the
// store is shut down while waiting.
func (s *MailboxStore) Dequeue(username domain.Username, deadline time.Duration) (domain.Inbound, error) {
	var expired bool
	if deadline > 0 {
		timer := time.AfterFunc(deadline, func() {
			s.mu.Lock()
			expired = true
			s.mu.Unlock()
			s.cond.Broadcast()
		})
		defer timer.Stop()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if q := s.boxes[username]; len(q) > 0 {
			msg := q[0]
			s.boxes[username] = q[1:]
			return msg, nil
		}
		if s.closed {
			return domain.Inbound{}, domain.ErrStoreClosed
		}
		if expired {
			return domain.Inbound{}, domain.ErrTimeout
		}
		s.cond.Wait()
	}
}

// Pending returns the number of queued messages for username.
func (s *MailboxStore) Pending(username domain.Username) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.boxes[username])
}

// Close releases every blocked Dequeue caller. Used at server shutdown so
// connection handlers parked on an empty mailbox can exit.
func (s *MailboxStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

var _ domain.MailboxStore = (*MailboxStore)(nil)
