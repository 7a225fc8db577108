package serial

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const source = "serial"

type Service struct {
	port serial.Port
	tag  string

	closeOnce sync.Once
	closeErr  error
}

func Open(portName string, baudRate int, tag string) (*Service, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
	}

	slog.Info("open serial", "portName", portName, "baudRate", baudRate, "tag", tag)

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}

	return &Service{
		port: port,
		tag:  tag,
	}, nil
}

func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.port.Close()
	})

	return s.closeErr //nolint:wrapcheck
}

type receiver interface {
	Receive(ctx context.Context, source, address string, payload []byte)
}

// line is one advertisement reported by the bridge firmware.
type line struct {
	address string
	payload string
}

// parseLine extracts the advertisement from a log line of the form
// "... <tag>: [<address>] <payload>".
func parseLine(s string, tag string, out *line) bool {
	tagPos := strings.Index(s, tag)
	if tagPos == -1 {
		return false
	}

	rest := s[tagPos+len(tag):]
	if !strings.HasPrefix(rest, ":") {
		return false
	}

	fields := strings.Fields(rest[1:])

	switch len(fields) {
	case 1:
		out.address = ""
		out.payload = fields[0]
	case 2: //nolint:mnd
		out.address = strings.ToUpper(fields[0])
		out.payload = fields[1]
	default:
		return false
	}

	return true
}

// Read reports advertisements to r until ctx is done. The port is closed on
// cancellation so a read parked on an idle bridge returns.
func (s *Service) Read(ctx context.Context, r receiver) error {
	return read(ctx, s.port, s.Close, s.tag, r)
}

func read(ctx context.Context, src io.Reader, closeFn func() error, tag string, r receiver) error {
	stop := context.AfterFunc(ctx, func() {
		_ = closeFn()
	})
	defer stop()

	reader := bufio.NewScanner(src)
	reader.Split(bufio.ScanLines)

	var out line

	for reader.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		text := reader.Text()
		if text == "" {
			continue
		}

		if parseLine(text, tag, &out) {
			slog.DebugContext(ctx, text, "address", out.address, "payload", out.payload)
			r.Receive(ctx, source, out.address, []byte(out.payload))
		}
	}

	if err := reader.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read serial: %w", err)
	}

	return nil
}
