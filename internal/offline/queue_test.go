package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisQueue(t *testing.T, max int) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisQueue(client, max), mr
}

// queues runs fn against every Queue implementation.
func queues(t *testing.T, max int, fn func(t *testing.T, q Queue)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryQueue(max))
	})
	t.Run("redis", func(t *testing.T) {
		q, _ := newRedisQueue(t, max)
		fn(t, q)
	})
}

func action(i int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"type":"report","n":%d}`, i))
}

func TestQueue_AppendReadOrder(t *testing.T) {
	queues(t, 10, func(t *testing.T, q Queue) {
		ctx := context.Background()
		for i := 1; i <= 3; i++ {
			n, err := q.Append(ctx, "user-1", action(i))
			require.NoError(t, err)
			assert.Equal(t, i, n)
		}

		got, err := q.Read(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i, a := range got {
			assert.JSONEq(t, string(action(i+1)), string(a))
		}
	})
}

func TestQueue_CapDropsOldest(t *testing.T) {
	queues(t, 3, func(t *testing.T, q Queue) {
		ctx := context.Background()
		var n int
		var err error
		for i := 1; i <= 5; i++ {
			n, err = q.Append(ctx, "k", action(i))
			require.NoError(t, err)
		}
		assert.Equal(t, 3, n)

		got, err := q.Read(ctx, "k")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.JSONEq(t, string(action(3)), string(got[0]))
		assert.JSONEq(t, string(action(5)), string(got[2]))
	})
}

func TestQueue_KeysAreIndependent(t *testing.T) {
	queues(t, 10, func(t *testing.T, q Queue) {
		ctx := context.Background()
		_, err := q.Append(ctx, "a", action(1))
		require.NoError(t, err)

		got, err := q.Read(ctx, "b")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestQueue_Clear(t *testing.T) {
	queues(t, 10, func(t *testing.T, q Queue) {
		ctx := context.Background()
		_, err := q.Append(ctx, "k", action(1))
		require.NoError(t, err)

		require.NoError(t, q.Clear(ctx, "k"))
		got, err := q.Read(ctx, "k")
		require.NoError(t, err)
		assert.Empty(t, got)

		// clearing a missing key is fine
		assert.NoError(t, q.Clear(ctx, "missing"))
	})
}

func TestQueue_EmptyKey(t *testing.T) {
	queues(t, 10, func(t *testing.T, q Queue) {
		ctx := context.Background()
		_, err := q.Append(ctx, "", action(1))
		assert.ErrorIs(t, err, ErrEmptyKey)
		_, err = q.Read(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyKey)
		assert.ErrorIs(t, q.Clear(ctx, ""), ErrEmptyKey)
	})
}

func TestMemoryQueue_ReadReturnsCopy(t *testing.T) {
	q := NewMemoryQueue(10)
	ctx := context.Background()
	_, err := q.Append(ctx, "k", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)

	got, err := q.Read(ctx, "k")
	require.NoError(t, err)
	got[0][2] = 'b'

	again, err := q.Read(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(again[0]))
}

func TestRedisQueue_UsesPrefix(t *testing.T) {
	q, mr := newRedisQueue(t, 10)
	_, err := q.Append(context.Background(), "device-7", action(1))
	require.NoError(t, err)

	assert.True(t, mr.Exists(KeyPrefix+"device-7"))
	list, err := mr.List(KeyPrefix + "device-7")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRedisQueue_Unavailable(t *testing.T) {
	q, mr := newRedisQueue(t, 10)
	mr.Close()

	_, err := q.Append(context.Background(), "k", action(1))
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), mr.Addr(), "", 0)
	assert.Error(t, err)
}
