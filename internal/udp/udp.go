package udp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

const (
	source          = "udp"
	readFromTimeout = 2 * time.Second
	maxUDPSafeSize  = 1472
)

type Service struct {
	pc net.PacketConn
}

func Listen(port string) (*Service, error) {
	slog.Info("listening UDP", "port", port)

	pc, err := net.ListenPacket("udp4", port)
	if err != nil {
		return nil, fmt.Errorf("listenPacket: %w", err)
	}

	return &Service{
		pc: pc,
	}, nil
}

func (s *Service) Addr() net.Addr {
	return s.pc.LocalAddr()
}

func (s *Service) Close() error {
	return s.pc.Close() //nolint:wrapcheck
}

type receiver interface {
	Receive(ctx context.Context, source, address string, payload []byte)
}

// senderAddress drops the port so every datagram from one gateway maps to
// the same device address.
func senderAddress(addr net.Addr) string {
	if addr == nil {
		return ""
	}

	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}

	return host
}

func (s *Service) Listen(ctx context.Context, r receiver) error {
	buf := make([]byte, maxUDPSafeSize)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := s.pc.SetReadDeadline(time.Now().Add(readFromTimeout))
		if err != nil {
			return fmt.Errorf("setReadDeadline: %w", err)
		}

		n, addr, err := s.pc.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			slog.WarnContext(ctx, "failed to read from UDP", "error", err)

			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])

		r.Receive(ctx, source, senderAddress(addr), payload)
	}
}
