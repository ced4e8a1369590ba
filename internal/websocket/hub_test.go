package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("ws-secret")

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub, url, _ := startCancellableServer(t)
	return hub, url
}

func startCancellableServer(t *testing.T) (*Hub, string, context.CancelFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, secret) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws", cancel
}

func managerToken(t *testing.T) string {
	t.Helper()
	token, err := middleware.SignToken(secret, "gerente1@empresa.com", "Roberto Silva", model.RoleManager, time.Hour)
	require.NoError(t, err)
	return token
}

// waitTimeout fails the test if fn does not return within d.
func waitTimeout(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	finished := make(chan struct{})
	go func() {
		fn()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(d):
		t.Fatal("timed out waiting")
	}
}

func waitClosed(t *testing.T, hub *Hub) {
	t.Helper()
	select {
	case <-hub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
}

func TestHub_BroadcastsPublishedEvents(t *testing.T) {
	hub, url := startServer(t)

	token, err := middleware.SignToken(secret, "gerente1@empresa.com", "Roberto Silva", model.RoleManager, time.Hour)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	evt := notify.Event{
		Type:      notify.EventApproved,
		RequestID: "#PED-2026-0001",
		Status:    model.StatusPartiallyApproved,
		Level:     model.LevelSecond,
		ActorID:   "gerente1@empresa.com",
		At:        time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, hub.Publish(context.Background(), evt))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got notify.Event
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, evt, got)
}

func TestServeWs_RejectsMissingOrInvalidToken(t *testing.T) {
	_, url := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := middleware.SignToken(secret, "someone@empresa.com", "Someone", "auditor", time.Hour)
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_PublishHonoursContext(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	for i := 0; i < cap(hub.broadcast); i++ {
		hub.broadcast <- []byte("x")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := hub.Publish(ctx, notify.Event{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHub_ShutdownClosesClientsAndReleasesPumps(t *testing.T) {
	hub, url, cancel := startCancellableServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+managerToken(t), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	waitClosed(t, hub)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure), err)

	assert.Equal(t, 0, hub.ClientCount())
	waitTimeout(t, 2*time.Second, hub.Wait)
}

func TestServeWs_AfterShutdownClosesConnection(t *testing.T) {
	hub, url, cancel := startCancellableServer(t)
	cancel()
	waitClosed(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+managerToken(t), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	var netErr net.Error
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "connection should be closed, not left hanging")
	}
	assert.Equal(t, 0, hub.ClientCount())
	waitTimeout(t, 2*time.Second, hub.Wait)
}

func TestHub_PublishAfterShutdown(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	for i := 0; i < cap(hub.broadcast); i++ {
		hub.broadcast <- []byte("x")
	}
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()
	waitClosed(t, hub)

	err := hub.Publish(context.Background(), notify.Event{})
	assert.ErrorIs(t, err, ErrHubClosed)
}
