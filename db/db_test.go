package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolOptionsDefaults(t *testing.T) {
	got := PoolOptions{}.withDefaults()
	assert.Equal(t, PoolOptions{
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}, got)
}

func TestPoolOptionsKeepsExplicitValues(t *testing.T) {
	got := PoolOptions{
		MaxOpenConns:    10,
		MaxIdleConns:    40,
		ConnMaxLifetime: time.Minute,
		PingTimeout:     time.Second,
	}.withDefaults()

	assert.Equal(t, 10, got.MaxOpenConns)
	assert.Equal(t, 10, got.MaxIdleConns, "idle connections are capped by the open limit")
	assert.Equal(t, time.Minute, got.ConnMaxLifetime)
	assert.Equal(t, time.Second, got.PingTimeout)
}
