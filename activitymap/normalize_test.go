package activitymap_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-authd"
	"github.com/goliatone/go-authd/activitymap"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	event := auth.ActivityEvent{
		EventType:  auth.ActivityEventSignUp,
		UserID:     "user-100",
		Email:      "a@x.com",
		Metadata:   map[string]any{"role": "admin"},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	assert.Equal(t, "user-100", out.ActorID)
	assert.Equal(t, string(auth.ActivityEventSignUp), out.Verb)
	assert.Equal(t, "user", out.ObjectType)
	assert.Equal(t, "user-100", out.ObjectID)
	assert.Equal(t, "auth", out.Channel)
	assert.True(t, out.OccurredAt.Equal(ts))
	assert.Equal(t, "admin", out.Metadata["role"])
	assert.Equal(t, "a@x.com", out.Metadata[activitymap.MetadataKeyEmail])
}

func TestNormalizeAnonymousFailure(t *testing.T) {
	t.Parallel()

	event := auth.ActivityEvent{
		EventType: auth.ActivityEventLoginFailure,
		Email:     "ghost@x.com",
	}

	out := activitymap.Normalize(event)
	assert.Equal(t, "anonymous", out.ActorID)
	assert.Empty(t, out.ObjectID)
	assert.False(t, out.OccurredAt.IsZero())

	out = activitymap.Normalize(event, activitymap.WithActorFallback("edge"), activitymap.WithDefaultChannel("web"))
	assert.Equal(t, "edge", out.ActorID)
	assert.Equal(t, "web", out.Channel)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	metadata := map[string]any{"reason": "auth_invalid_credentials"}
	activitymap.Normalize(auth.ActivityEvent{
		EventType: auth.ActivityEventLoginFailure,
		Email:     "a@x.com",
		Metadata:  metadata,
	})

	assert.Len(t, metadata, 1)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := activitymap.NewLogSink(auth.NewLogger("info", "json", &buf))

	err := sink.Record(context.Background(), auth.ActivityEvent{
		EventType: auth.ActivityEventLoginFailure,
		UserID:    "1",
		Email:     "a@x.com",
		Metadata:  map[string]any{"reason": "auth_invalid_credentials"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"verb":"auth.login.failure"`)
	assert.Contains(t, out, `"actor_id":"1"`)
	assert.Contains(t, out, `"reason":"auth_invalid_credentials"`)
	assert.Contains(t, out, `"email":"a@x.com"`)
}

func TestLogSink_NilLogger(t *testing.T) {
	sink := activitymap.NewLogSink(nil)
	assert.NoError(t, sink.Record(context.Background(), auth.ActivityEvent{EventType: auth.ActivityEventLogout}))
}
