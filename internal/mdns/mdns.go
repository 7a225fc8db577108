// Package mdns advertises the dashboard on the local network.
package mdns

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/grandcat/zeroconf"
)

const (
	serviceType = "_http._tcp"
	domain      = "local."
)

// Port extracts the TCP port from an HTTP listen address such as ":8001".
func Port(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("split host port: %w", err)
	}

	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", p)
	}

	return port, nil
}

func txtRecords(version string) []string {
	return []string{
		"path=/",
		"api=/api/devices",
		"version=" + version,
	}
}

// Advertise registers the service and keeps it announced until ctx is done.
func Advertise(ctx context.Context, instance, httpAddr, version string) error {
	port, err := Port(httpAddr)
	if err != nil {
		return err
	}

	server, err := zeroconf.Register(instance, serviceType, domain, port, txtRecords(version), nil)
	if err != nil {
		return fmt.Errorf("register mdns service: %w", err)
	}

	defer server.Shutdown()

	slog.InfoContext(ctx, "mdns service registered", "instance", instance, "service", serviceType, "port", port)

	<-ctx.Done()

	return nil
}
