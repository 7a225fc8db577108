package udp //nolint:testpackage

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	source, address string
	payload         []byte
}

type recorder struct {
	mu  sync.Mutex
	got []received
}

func (r *recorder) Receive(_ context.Context, source, address string, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.got = append(r.got, received{source, address, payload})
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.got)
}

func TestListen(t *testing.T) {
	srv, err := Listen("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	done := make(chan error, 1)

	go func() {
		done <- srv.Listen(ctx, rec)
	}()

	conn, err := net.Dial("udp4", srv.Addr().String())
	require.NoError(t, err)

	defer conn.Close()

	payload := []byte("990403291A1ECE1EFC18F94202CA0B53")
	_, err = conn.Write(payload)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return rec.len() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, srv.Close())
	require.NoError(t, <-done)

	assert.Equal(t, "udp", rec.got[0].source)
	assert.Equal(t, "127.0.0.1", rec.got[0].address)
	assert.Equal(t, payload, rec.got[0].payload)
}

func TestSenderAddress(t *testing.T) {
	assert.Equal(t, "10.0.0.7", senderAddress(&net.UDPAddr{IP: net.IPv4(10, 0, 0, 7), Port: 5000}))
	assert.Empty(t, senderAddress(nil))
}
