package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserRegisteredEvent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	at := time.Date(2026, 3, 14, 9, 26, 0, 0, time.FixedZone("X", 3600))

	event, err := NewUserRegisteredEvent(userID, "a@b.com", at)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeUserRegistered, event.Type)
	assert.Equal(t, time.UTC, event.OccurredAt.Location())
	assert.True(t, event.OccurredAt.Equal(at))

	var payload UserRegistered
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, "a@b.com", payload.Email)
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewEvent("broken", make(chan int), time.Now())
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()

	event, err := NewUserRegisteredEvent(uuid.New(), "a@b.com", time.Now())
	require.NoError(t, err)

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("dispatches in order", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		var seen []string
		emitter.RegisterHandler(EventHandlerFunc(func(_ context.Context, e *Event) error {
			seen = append(seen, "first:"+e.Type)
			return nil
		}))
		emitter.RegisterHandler(EventHandlerFunc(func(_ context.Context, e *Event) error {
			seen = append(seen, "second:"+e.Type)
			return nil
		}))

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, []string{"first:user.registered", "second:user.registered"}, seen)
	})

	t.Run("returns first error and keeps dispatching", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		errFirst := errors.New("first")
		errSecond := errors.New("second")
		calls := 0
		emitter.RegisterHandler(EventHandlerFunc(func(context.Context, *Event) error {
			calls++
			return errFirst
		}))
		emitter.RegisterHandler(EventHandlerFunc(func(context.Context, *Event) error {
			calls++
			return errSecond
		}))

		err := emitter.EmitEvent(context.Background(), event)
		assert.ErrorIs(t, err, errFirst)
		assert.Equal(t, 2, calls)
	})
}

func TestLoggingHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := logger.WithLogger(context.Background(), log)

	event, err := NewUserRegisteredEvent(uuid.New(), "a@b.com", time.Now())
	require.NoError(t, err)

	require.NoError(t, LoggingHandler{}.HandleEvent(ctx, event))
	assert.Contains(t, buf.String(), `"event_type":"user.registered"`)
	assert.Contains(t, buf.String(), event.ID.String())
}
