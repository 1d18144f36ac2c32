package app

import (
	"sync"

	"quiz-admin-service/internal/domain"
)

// Feed fans submission events for one quiz out to live subscribers.
type Feed struct {
	quizID      string
	mu          sync.Mutex
	subscribers map[chan domain.SubmissionEvent]struct{}
}

// NewFeed is exported for infrastructure layers that keep feeds per quiz.
func NewFeed(quizID string) *Feed {
	return &Feed{
		quizID:      quizID,
		subscribers: make(map[chan domain.SubmissionEvent]struct{}),
	}
}

// Subscribe registers a buffered channel. The caller must invoke the returned
// cancel function to avoid leaks; cancel is idempotent.
func (f *Feed) Subscribe() (<-chan domain.SubmissionEvent, func()) {
	ch := make(chan domain.SubmissionEvent, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast delivers ev to every subscriber without blocking. A subscriber
// whose buffer is full loses its oldest pending event.
func (f *Feed) Broadcast(ev domain.SubmissionEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// IsIdle reports whether the feed has no subscribers.
func (f *Feed) IsIdle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers) == 0
}

// QuizID returns the quiz this feed belongs to.
func (f *Feed) QuizID() string {
	return f.quizID
}
