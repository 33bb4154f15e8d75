package cache

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsInvalidURL(t *testing.T) {
	_, err := New(context.Background(), "http://localhost:6379")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestDelete_NoKeysIsNoop(t *testing.T) {
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "test:")
	defer c.Close()

	assert.NoError(t, c.Delete(context.Background()))
}
