package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"quiz-admin-service/internal/domain"
	"quiz-admin-service/internal/infra/memory"
	"quiz-admin-service/internal/logging"
)

const feedChannelPrefix = "quiz:feed:"

// FeedHub routes submission events through Redis pub/sub so every instance's
// watchers see submissions taken on any instance. Local fan-out reuses the
// in-process hub; Run relays Redis messages into it.
type FeedHub struct {
	client *redis.Client
	local  *memory.FeedHub

	readyOnce sync.Once
	ready     chan struct{}
}

func NewFeedHub(client *redis.Client) *FeedHub {
	return &FeedHub{
		client: client,
		local:  memory.NewFeedHub(),
		ready:  make(chan struct{}),
	}
}

// Publish sends the event to every instance, this one included.
func (h *FeedHub) Publish(ctx context.Context, event domain.SubmissionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode submission event: %w", err)
	}
	return h.client.Publish(ctx, feedChannelPrefix+event.QuizID, payload).Err()
}

// Subscribe registers a local watcher; Run feeds it events from every instance.
func (h *FeedHub) Subscribe(ctx context.Context, quizID string) (<-chan domain.SubmissionEvent, func(), error) {
	return h.local.Subscribe(ctx, quizID)
}

// Watching reports whether this instance has live watchers for the quiz.
func (h *FeedHub) Watching(quizID string) bool {
	return h.local.Watching(quizID)
}

// Ready is closed once Run holds its Redis subscription.
func (h *FeedHub) Ready() <-chan struct{} {
	return h.ready
}

// Run relays published events to local watchers until ctx is done.
func (h *FeedHub) Run(ctx context.Context) error {
	sub := h.client.PSubscribe(ctx, feedChannelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to submission feed: %w", err)
	}
	h.readyOnce.Do(func() { close(h.ready) })

	log := logging.FromContext(ctx)
	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var event domain.SubmissionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.WithError(err).WithField("channel", msg.Channel).Warn("drop malformed submission event")
				continue
			}
			if event.QuizID == "" {
				event.QuizID = strings.TrimPrefix(msg.Channel, feedChannelPrefix)
			}
			_ = h.local.Publish(ctx, event)
		}
	}
}
