// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inkredis "github.com/taibuivan/inkwell/internal/platform/redis"
)

/*
TestNewClient_Connects verifies the client pings the server at startup.
*/
func TestNewClient_Connects(t *testing.T) {
	server := miniredis.RunT(t)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	client, err := inkredis.NewClient(context.Background(), "redis://"+server.Addr()+"/0", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, inkredis.Ping(context.Background(), client))

	// A stopped server makes the health check fail
	server.Close()
	assert.Error(t, inkredis.Ping(context.Background(), client))
}

/*
TestNewClient_InvalidURL ensures malformed URLs are rejected before dialing.
*/
func TestNewClient_InvalidURL(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	_, err := inkredis.NewClient(context.Background(), "http://not-redis", logger)
	assert.Error(t, err)
}
