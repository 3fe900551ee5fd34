package ws

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case got, ok := <-c.Send:
		require.True(t, ok, "canal de %s fechado", c.ID)
		return got
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting %s", c.ID)
		return nil
	}
}

func noMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case got := <-c.Send:
		t.Fatalf("%s não devia receber nada, recebeu %q", c.ID, got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_Broadcast(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	c1 := &Client{Send: make(chan []byte, 1)}
	c2 := &Client{OwnerID: "42", Send: make(chan []byte, 1)}
	h.Register(c1)
	h.Register(c2)

	h.Broadcast([]byte("hello"))

	assert.Equal(t, "hello", string(recv(t, c1)))
	assert.Equal(t, "hello", string(recv(t, c2)))
	assert.NotEmpty(t, c1.ID)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestHub_PublishForOwner(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	all := &Client{ID: "all", Send: make(chan []byte, 1)}
	owner := &Client{ID: "owner", OwnerID: "123", Send: make(chan []byte, 1)}
	other := &Client{ID: "other", OwnerID: "999", Send: make(chan []byte, 1)}
	h.Register(all)
	h.Register(owner)
	h.Register(other)

	h.PublishForOwner("123", []byte(`{"ownerid":"123"}`))

	assert.Equal(t, `{"ownerid":"123"}`, string(recv(t, all)))
	assert.Equal(t, `{"ownerid":"123"}`, string(recv(t, owner)))
	noMessage(t, other)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	c := &Client{Send: make(chan []byte, 1)}
	h.Register(c)
	h.Unregister(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Send não foi fechado")
	}
	require.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	slow := &Client{ID: "slow", Send: make(chan []byte)} // sem buffer: nunca aceita
	fast := &Client{ID: "fast", Send: make(chan []byte, 4)}
	h.Register(slow)
	h.Register(fast)

	h.Broadcast([]byte("a"))
	assert.Equal(t, "a", string(recv(t, fast)))

	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 10*time.Millisecond)
	_, ok := <-slow.Send
	assert.False(t, ok)
}

func TestHub_StopClosesClients(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	c := &Client{Send: make(chan []byte, 1)}
	h.Register(c)
	h.Stop()

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Equal(t, 0, h.Count())
}
