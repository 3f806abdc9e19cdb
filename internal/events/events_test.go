package events_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/events"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, string, any) error {
	f.calls++
	return errors.New("broker unavailable")
}

func (f *failingPublisher) Close() error { return nil }

func TestEmitLogsPublishFailure(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	pub := &failingPublisher{}

	events.Emit(context.Background(), pub, log, events.RecipeCreated, events.RecipeEvent{Name: "Soup"})

	assert.Equal(t, 1, pub.calls)
	assert.Contains(t, buf.String(), "failed to publish event")
	assert.Contains(t, buf.String(), "recipe.created")
}

func TestEmitWithoutPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		events.Emit(context.Background(), nil, slog.Default(), events.RecipeDeleted, nil)
	})
}

func TestNoopPublisher(t *testing.T) {
	var p events.Publisher = events.NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), events.UserSubscribed, events.SubscriptionEvent{}))
	assert.NoError(t, p.Close())
}
