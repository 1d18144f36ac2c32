package memory

import (
	"context"
	"sync"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/domain"
)

// FeedHub is the in-process implementation of app.FeedHub.
type FeedHub struct {
	mu    sync.Mutex
	feeds map[string]*app.Feed
}

func NewFeedHub() *FeedHub {
	return &FeedHub{feeds: make(map[string]*app.Feed)}
}

// Publish broadcasts to the quiz's feed if anyone is watching.
func (h *FeedHub) Publish(_ context.Context, event domain.SubmissionEvent) error {
	if feed, ok := h.get(event.QuizID); ok {
		feed.Broadcast(event)
	}
	return nil
}

// Subscribe joins the quiz's feed, creating it on first use. The feed is
// dropped once its last subscriber cancels.
func (h *FeedHub) Subscribe(_ context.Context, quizID string) (<-chan domain.SubmissionEvent, func(), error) {
	h.mu.Lock()
	feed, ok := h.feeds[quizID]
	if !ok {
		feed = app.NewFeed(quizID)
		h.feeds[quizID] = feed
	}
	ch, unsubscribe := feed.Subscribe()
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			unsubscribe()
			h.deleteIfIdle(quizID)
		})
	}
	return ch, cancel, nil
}

func (h *FeedHub) get(quizID string) (*app.Feed, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	feed, ok := h.feeds[quizID]
	return feed, ok
}

func (h *FeedHub) deleteIfIdle(quizID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	feed, ok := h.feeds[quizID]
	if !ok {
		return
	}
	if feed.IsIdle() {
		delete(h.feeds, quizID)
	}
}

// Watching reports whether quizID has live subscribers.
func (h *FeedHub) Watching(quizID string) bool {
	_, ok := h.get(quizID)
	return ok
}
