package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addClient(h *Hub, id uint, role string, buffer int) *Client {
	c := &Client{
		ID:   id,
		Role: role,
		Send: make(chan []byte, buffer),
		Hub:  h,
	}
	h.mutex.Lock()
	h.clients[c] = true
	h.mutex.Unlock()
	return c
}

func TestBroadcastToUserDelivers(t *testing.T) {
	hub := NewHub()
	client := addClient(hub, 7, "client", 8)
	other := addClient(hub, 8, "client", 8)

	hub.BroadcastToUser(7, []byte("hello"))

	select {
	case msg := <-client.Send:
		assert.Equal(t, "hello", string(msg))
	default:
		t.Fatal("expected a message for client 7")
	}

	select {
	case <-other.Send:
		t.Fatal("client 8 should not receive the message")
	default:
	}
}

func TestBroadcastDropsSlowConsumersConcurrently(t *testing.T) {
	hub := NewHub()

	// Unbuffered channels with no reader: every send hits the slow-consumer
	// branch, which closes the channel and removes the client.
	for id := uint(1); id <= 8; id++ {
		addClient(hub, id, "driver", 0)
	}
	require.Equal(t, 8, hub.GetConnectedClients())

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := uint(1); id <= 8; id++ {
				hub.BroadcastToUser(id, []byte("event"))
			}
			hub.BroadcastToRole("driver", []byte("event"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.GetConnectedClients())
}

func TestBroadcastToRoleFiltersByRole(t *testing.T) {
	hub := NewHub()
	driver := addClient(hub, 1, "driver", 4)
	client := addClient(hub, 2, "client", 4)

	hub.BroadcastToRole("driver", []byte("feed"))

	select {
	case msg := <-driver.Send:
		assert.Equal(t, "feed", string(msg))
	default:
		t.Fatal("expected a message for the driver")
	}

	select {
	case <-client.Send:
		t.Fatal("clients should not receive driver broadcasts")
	default:
	}
}
