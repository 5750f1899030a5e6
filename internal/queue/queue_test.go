package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, PublishJSON(ctx, q, TypeRegistrationCreated, map[string]string{"code": "ABC123"}))
	assert.Equal(t, 1, q.Len())

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, TypeRegistrationCreated, msg.Type)
		var body map[string]string
		require.NoError(t, json.Unmarshal(msg.Body, &body))
		assert.Equal(t, "ABC123", body["code"])
	case <-ctx.Done():
		t.Fatal("no message consumed")
	}
}

func TestInMemoryPublishRespectsContext(t *testing.T) {
	q := NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Publish(ctx, Message{Type: "a"}), context.Canceled)
	assert.Equal(t, 0, q.Len())
}

func TestInMemoryPublishFullReturnsImmediately(t *testing.T) {
	q := NewInMemory(1)
	require.NoError(t, q.Publish(context.Background(), Message{Type: "a"}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	err := PublishJSON(ctx, q, TypeContactSubmitted, map[string]string{"id": "c1"})
	assert.ErrorIs(t, err, ErrFull)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 1, q.Len())
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, nextBackoff(0))
	assert.Equal(t, 200*time.Millisecond, nextBackoff(100*time.Millisecond))
	assert.Equal(t, 5*time.Second, nextBackoff(4*time.Second))
	assert.Equal(t, 5*time.Second, nextBackoff(5*time.Second))
}

func TestNewMessageRejectsUnencodable(t *testing.T) {
	_, err := NewMessage("bad", make(chan int))
	assert.Error(t, err)
}
