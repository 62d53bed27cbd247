package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorsConfig(t *testing.T) {
	cfg := corsConfig([]string{"https://app.example", "https://admin.example"})
	assert.Equal(t, "https://app.example,https://admin.example", cfg.AllowOrigins)
	assert.True(t, cfg.AllowCredentials)

	cfg = corsConfig([]string{"https://app.example", "*"})
	assert.Equal(t, "*", cfg.AllowOrigins)
	assert.False(t, cfg.AllowCredentials)
}
