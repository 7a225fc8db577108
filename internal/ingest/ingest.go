package ingest

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ruuvi-sensor/internal/packet"
	"ruuvi-sensor/internal/ruuvi"
)

var ruuviCompanyID = []byte{0x99, 0x04}

var (
	ErrForeign    = errors.New("not ruuvi manufacturer data")
	ErrUnknownTag = errors.New("tag not in registry")
	ErrDuplicate  = errors.New("duplicate measurement")
)

type eventEmitter interface {
	Emit(p packet.Packet)
}

type resolver interface {
	Resolve(address string) (string, bool)
}

type observer interface {
	Observe(p packet.Packet)
	DecodeError(source string, kind ruuvi.ErrorKind)
	Duplicate(source string)
}

// Handler turns raw payloads from any transport into packets.
type Handler struct {
	emitter  eventEmitter
	tags     resolver
	observer observer
	latest   *packet.Latest
	dedup    *dedup
	now      func() time.Time
}

func New(emitter eventEmitter, tags resolver, obs observer, latest *packet.Latest) *Handler {
	return &Handler{
		emitter:  emitter,
		tags:     tags,
		observer: obs,
		latest:   latest,
		dedup:    newDedup(),
		now:      time.Now,
	}
}

// Decode accepts a ruu.vi URL, hex encoded manufacturer data or binary
// manufacturer data starting with the Ruuvi company id.
func Decode(payload []byte) (ruuvi.Reading, error) {
	switch classify(payload) {
	case kindURL:
		r, err := ruuvi.DecodeURL(string(bytes.TrimSpace(payload)))
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		return r, nil
	case kindHex:
		data, err := decodeHex(payload)
		if err != nil {
			return nil, &ruuvi.DecodeError{Kind: ruuvi.KindMalformedEncoding, Err: err}
		}

		return decodeAdvertisement(data)
	default:
		return decodeAdvertisement(payload)
	}
}

func decodeAdvertisement(data []byte) (ruuvi.Reading, error) {
	if len(data) >= len(ruuviCompanyID) && !bytes.HasPrefix(data, ruuviCompanyID) {
		return nil, fmt.Errorf("%w: company id %s", ErrForeign, hex.EncodeToString(data[:2]))
	}

	return ruuvi.DecodeAdvertisement(data) //nolint:wrapcheck
}

// Handle decodes payload, drops duplicates and tags outside the registry,
// and emits the resulting packet.
func (h *Handler) Handle(source, address string, payload []byte) (packet.Packet, error) {
	if address == "" {
		address = source
	}

	name, ok := h.tags.Resolve(address)
	if !ok {
		return packet.Packet{}, fmt.Errorf("%w: %s", ErrUnknownTag, address)
	}

	r, err := Decode(payload)
	if err != nil {
		if kind := ruuvi.KindOf(err); kind != 0 {
			h.observer.DecodeError(source, kind)
		}

		return packet.Packet{}, err
	}

	if v5, ok := r.(ruuvi.V5); ok && h.dedup.seen(address, v5.MeasurementSequenceNumber) {
		h.observer.Duplicate(source)

		return packet.Packet{}, ErrDuplicate
	}

	p := packet.New(r, h.now())
	p.Address = address
	p.Name = name
	p.Source = source
	p.URL = SourceURL(payload)

	if h.latest.Set(p) {
		slog.Info("tag found", "address", address, "name", name, "source", source, "format", p.DataFormat)
	}

	h.observer.Observe(p)
	h.emitter.Emit(p)

	return p, nil
}

// Receive is Handle for transports that only log failures.
func (h *Handler) Receive(ctx context.Context, source, address string, payload []byte) {
	p, err := h.Handle(source, address, payload)

	switch {
	case err == nil:
		slog.DebugContext(ctx, "packet decoded", "source", source, "packet", p.String())
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrUnknownTag), errors.Is(err, ErrForeign):
		slog.DebugContext(ctx, "payload ignored", "source", source, "address", address, "reason", err)
	default:
		slog.WarnContext(ctx, "failed to decode payload",
			"source", source,
			"address", address,
			"error", err,
			"raw_hex", hex.EncodeToString(payload),
		)
	}
}
