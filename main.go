// Ruuvi-sensor decodes RuuviTag advertisements received from a serial BLE
// bridge, UDP gateways or MQTT and serves them as a live dashboard.
//
// Usage:
//
//	ruuvi-sensor serve [flags]
//	ruuvi-sensor decode <url|hex>...
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ruuvi-sensor/internal/codec"
	"ruuvi-sensor/internal/config"
	"ruuvi-sensor/internal/dataset"
	"ruuvi-sensor/internal/ingest"
	"ruuvi-sensor/internal/logging"
	"ruuvi-sensor/internal/mdns"
	"ruuvi-sensor/internal/metrics"
	"ruuvi-sensor/internal/mqtt"
	"ruuvi-sensor/internal/packet"
	"ruuvi-sensor/internal/serial"
	"ruuvi-sensor/internal/udp"
	"ruuvi-sensor/internal/web"
)

const (
	shutdownTimeout = 2 * time.Second
	clearInterval   = 1 * 24 * time.Hour
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ruuvi-sensor",
		Short:         "RuuviTag advertisement decoder and dashboard",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newDecodeCmd())

	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive advertisements and serve the dashboard",
		Example: `  # UDP gateway on the default port
  ruuvi-sensor serve --udp-enable

  # BLE bridge on a serial port with named tags
  ruuvi-sensor serve --serial-enable --serial-port /dev/ttyUSB0 --tags tags.yaml`,
		Args: cobra.NoArgs,
	}

	cfg := config.Bind(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(); err != nil {
			return err //nolint:wrapcheck
		}

		slog.SetDefault(logging.New(os.Stderr, cfg.LogFormat, cfg.Debug))

		return serve(cmd.Context(), cfg)
	}

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	tags, err := config.LoadTags(cfg.TagsFile)
	if err != nil {
		return err //nolint:wrapcheck
	}

	publishEncoding, err := codec.Parse(cfg.MQTT.PublishEncoding)
	if err != nil {
		return err //nolint:wrapcheck
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emitter := packet.NewEventEmitter()
	defer emitter.Close()

	latest := packet.NewLatest()
	registry := metrics.New()
	handler := ingest.New(emitter, tags, registry, latest)
	stats := dataset.NewStats(latest)

	serverHTTP, err := web.New(ctx, cfg.HTTPServer.Addr, emitter, stats, registry)
	if err != nil {
		return err //nolint:wrapcheck
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.UDPServer.Enable {
		serverUDP, err := udp.Listen(cfg.UDPServer.Port)
		if err != nil {
			return err //nolint:wrapcheck
		}

		defer serverUDP.Close()

		g.Go(func() error {
			return serverUDP.Listen(gCtx, handler)
		})
	}

	if cfg.Serial.Enable {
		port, err := serial.Open(cfg.Serial.PortName, cfg.Serial.BaudRate, cfg.Serial.Tag)
		if err != nil {
			return err //nolint:wrapcheck
		}

		defer port.Close()

		g.Go(func() error {
			return port.Read(gCtx, handler)
		})
	}

	if cfg.MQTT.Enable {
		client := mqtt.New(cfg.MQTT, handler)
		defer client.Close()

		g.Go(func() error {
			return client.Run(gCtx)
		})

		if cfg.MQTT.PublishPrefix != "" {
			g.Go(func() error {
				return client.Publish(gCtx, emitter, cfg.MQTT.PublishPrefix, publishEncoding)
			})
		}
	}

	if cfg.Metrics.PushURL != "" {
		if err := registry.Push(gCtx, cfg.Metrics.PushURL, cfg.Metrics.PushInterval); err != nil {
			return err //nolint:wrapcheck
		}
	}

	if cfg.MDNS.Enable {
		g.Go(func() error {
			return mdns.Advertise(gCtx, cfg.MDNS.Instance, cfg.HTTPServer.Addr, version)
		})
	}

	g.Go(func() error {
		return stats.Subscribe(gCtx, emitter)
	})

	g.Go(func() error {
		return stats.Clear(gCtx, clearInterval)
	})

	g.Go(func() error {
		slog.Info("listening HTTP", "addr", serverHTTP.Addr)

		return serverHTTP.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		return serverHTTP.Shutdown(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err //nolint:wrapcheck
	}

	return nil
}
