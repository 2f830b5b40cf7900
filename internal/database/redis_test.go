package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient("not-a-redis-url")
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}
