package ingest_test

import (
	"context"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruuvi-sensor/internal/config"
	"ruuvi-sensor/internal/ingest"
	"ruuvi-sensor/internal/packet"
	"ruuvi-sensor/internal/ruuvi"
)

const (
	v5Hex = "99040512FC5394C37C0004FFFC040CAC364200CDCBB8334C884F"
	v3Hex = "990403291A1ECE1EFC18F94202CA0B53"
)

type recorder struct {
	mu         sync.Mutex
	emitted    []packet.Packet
	observed   int
	errors     map[ruuvi.ErrorKind]int
	duplicates int
}

func newRecorder() *recorder {
	return &recorder{errors: make(map[ruuvi.ErrorKind]int)}
}

func (r *recorder) Emit(p packet.Packet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.emitted = append(r.emitted, p)
}

func (r *recorder) Observe(packet.Packet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observed++
}

func (r *recorder) DecodeError(_ string, kind ruuvi.ErrorKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors[kind]++
}

func (r *recorder) Duplicate(string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.duplicates++
}

func newHandler(t *testing.T, tagsYAML string) (*ingest.Handler, *recorder, *packet.Latest) {
	t.Helper()

	tags, err := config.ParseTags([]byte(tagsYAML))
	require.NoError(t, err)

	rec := newRecorder()
	latest := packet.NewLatest()

	return ingest.New(rec, tags, rec, latest), rec, latest
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

func TestHandleHexFormat5(t *testing.T) {
	h, rec, latest := newHandler(t, `tags: {"C8:25:2D:8E:9C:11": kitchen}`)

	p, err := h.Handle("mqtt", "c8:25:2d:8e:9c:11", []byte(v5Hex))
	require.NoError(t, err)

	assert.Equal(t, "kitchen", p.Name)
	assert.Equal(t, "mqtt", p.Source)
	assert.Equal(t, ruuvi.FormatV5, p.DataFormat)
	assert.Empty(t, p.URL)
	assert.InDelta(t, 24.3, p.Temperature, 1e-9)
	assert.InDelta(t, 1000.44, p.Pressure, 1e-9)
	assert.InDelta(t, 2977.0, p.Voltage, 1e-9)
	assert.False(t, p.Timestamp.IsZero())

	require.Len(t, rec.emitted, 1)
	assert.Equal(t, p, rec.emitted[0])
	assert.Equal(t, 1, rec.observed)

	stored, ok := latest.Get("c8:25:2d:8e:9c:11")
	require.True(t, ok)
	assert.Equal(t, p, stored)
}

func TestHandleDropsRepeatedSequence(t *testing.T) {
	h, rec, _ := newHandler(t, "")
	data := mustHex(t, v5Hex)

	_, err := h.Handle("udp", "a", data)
	require.NoError(t, err)

	_, err = h.Handle("udp", "a", data)
	require.ErrorIs(t, err, ingest.ErrDuplicate)

	_, err = h.Handle("udp", "b", data)
	require.NoError(t, err, "dedup is per address")

	data[19]++
	_, err = h.Handle("udp", "a", data)
	require.NoError(t, err)

	assert.Len(t, rec.emitted, 3)
	assert.Equal(t, 1, rec.duplicates)
}

func TestHandleFormat3IsNotDeduplicated(t *testing.T) {
	h, rec, _ := newHandler(t, "")
	data := mustHex(t, v3Hex)

	for range 3 {
		_, err := h.Handle("serial", "a", data)
		require.NoError(t, err)
	}

	assert.Len(t, rec.emitted, 3)
}

func TestHandleURL(t *testing.T) {
	h, rec, _ := newHandler(t, "")

	p, err := h.Handle("serial", "", []byte(" https://ruu.vi/#BEgYAMFcg\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "serial", p.Address)
	assert.Equal(t, "https://ruu.vi/#BEgYAMFcg", p.URL)
	assert.Equal(t, ruuvi.FormatV4, p.DataFormat)
	assert.InDelta(t, 995.0, p.Pressure, 1e-9)

	v24, ok := p.Reading.(ruuvi.V24)
	require.True(t, ok)
	require.NotNil(t, v24.EddystoneID)
	assert.Equal(t, uint8(0x81), *v24.EddystoneID)
	assert.Len(t, rec.emitted, 1)
}

func TestHandleErrors(t *testing.T) {
	h, rec, _ := newHandler(t, "allow_unknown: false\ntags: {known: kitchen}")

	_, err := h.Handle("udp", "stranger", []byte(v5Hex))
	require.ErrorIs(t, err, ingest.ErrUnknownTag)

	_, err = h.Handle("udp", "known", mustHex(t, "4C000215"))
	require.ErrorIs(t, err, ingest.ErrForeign)

	_, err = h.Handle("udp", "known", mustHex(t, "990409000000"))
	require.ErrorIs(t, err, ruuvi.ErrUnsupportedFormat)

	_, err = h.Handle("udp", "known", mustHex(t, "99040512FC"))
	require.ErrorIs(t, err, ruuvi.ErrMalformedLength)

	_, err = h.Handle("udp", "known", []byte("https://ruu.vi/#"))
	require.ErrorIs(t, err, ruuvi.ErrMalformedURL)

	assert.Empty(t, rec.emitted)
	assert.Equal(t, 1, rec.errors[ruuvi.KindUnsupportedFormat])
	assert.Equal(t, 1, rec.errors[ruuvi.KindMalformedLength])
	assert.Equal(t, 1, rec.errors[ruuvi.KindMalformedURL])
}

func TestDecode(t *testing.T) {
	r, err := ingest.Decode(mustHex(t, v3Hex))
	require.NoError(t, err)
	assert.Equal(t, ruuvi.FormatV3, r.DataFormat())

	r, err = ingest.Decode([]byte(v5Hex + "\n"))
	require.NoError(t, err)
	assert.Equal(t, ruuvi.FormatV5, r.DataFormat())

	r, err = ingest.Decode([]byte("https://ruu.vi/#AjwYAMFc"))
	require.NoError(t, err)
	assert.Equal(t, ruuvi.FormatV2, r.DataFormat())

	_, err = ingest.Decode([]byte("https://example.com/"))
	require.ErrorIs(t, err, ruuvi.ErrNotRuuviURL)
}

func TestReceive(t *testing.T) {
	h, rec, _ := newHandler(t, "")

	h.Receive(context.Background(), "udp", "a", []byte(v5Hex))
	h.Receive(context.Background(), "udp", "a", []byte("garbage"))

	assert.Len(t, rec.emitted, 1)
}
