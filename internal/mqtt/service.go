package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"ruuvi-sensor/internal/codec"
	"ruuvi-sensor/internal/config"
	"ruuvi-sensor/internal/packet"
)

const (
	source = "mqtt"

	disconnectQuiesce = 250
)

type Service struct {
	topic    string
	client   mqtt.Client
	receiver receiver
}

type receiver interface {
	Receive(ctx context.Context, source, address string, payload []byte)
}

type eventEmitter interface {
	Subscribe() chan packet.Packet
	Unsubscribe(ch chan packet.Packet)
}

func New(cfg config.MQTT, r receiver) *Service {
	srv := &Service{
		topic:    cfg.Topic,
		receiver: r,
	}

	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetKeepAlive(cfg.KeepAliveDuration)
	opts.SetDefaultPublishHandler(srv.messageHandler())
	opts.SetPingTimeout(cfg.PingTimeout)
	opts.SetAutoReconnect(true)
	opts.SetConnectionNotificationHandler(func(_ mqtt.Client, notification mqtt.ConnectionNotification) {
		switch n := notification.(type) {
		case mqtt.ConnectionNotificationConnected:
			slog.Debug("connected")
		case mqtt.ConnectionNotificationConnecting:
			slog.Debug("connecting", "isReconnect", n.IsReconnect, "attempt", n.Attempt)
		case mqtt.ConnectionNotificationFailed:
			slog.Debug("connection failed", "reason", n.Reason)
		case mqtt.ConnectionNotificationLost:
			slog.Debug("connection lost", "reason", n.Reason)
		case mqtt.ConnectionNotificationBroker:
			slog.Debug("broker connection", "broker", n.Broker.String())
		case mqtt.ConnectionNotificationBrokerFailed:
			slog.Debug("broker connection failed", "reason", n.Reason, "broker", n.Broker.String())
		}
	})

	srv.client = mqtt.NewClient(opts)

	return srv
}

func (s *Service) Run(ctx context.Context) error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect: %w", token.Error())
	}

	if token := s.client.Subscribe(s.topic, 0, nil); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe: %w", token.Error())
	}

	<-ctx.Done()

	return nil
}

func (s *Service) Close() error {
	if !s.client.IsConnectionOpen() {
		return nil
	}

	if token := s.client.Unsubscribe(s.topic); token.Wait() && token.Error() != nil {
		return fmt.Errorf("unsubscribe: %w", token.Error())
	}

	s.client.Disconnect(disconnectQuiesce)

	return nil
}

// Publish republishes every decoded packet to <prefix>/<address> until ctx
// is done or the emitter is closed.
func (s *Service) Publish(ctx context.Context, emitter eventEmitter, prefix string, enc codec.Encoding) error {
	ch := emitter.Subscribe()
	defer emitter.Unsubscribe(ch)

	prefix = strings.TrimSuffix(prefix, "/")

	for {
		select {
		case p, ok := <-ch:
			if !ok {
				return nil
			}

			s.publish(ctx, prefix+"/"+p.Address, p, enc)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Service) publish(ctx context.Context, topic string, p packet.Packet, enc codec.Encoding) {
	payload, err := enc.Marshal(p)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode packet", "topic", topic, "error", err)

		return
	}

	if !s.client.IsConnectionOpen() {
		slog.DebugContext(ctx, "not connected, packet dropped", "topic", topic)

		return
	}

	token := s.client.Publish(topic, 0, false, payload)

	go func() {
		<-token.Done()

		if err := token.Error(); err != nil {
			slog.Warn("failed to publish packet", "topic", topic, "error", err)
		}
	}()
}

// addressFromTopic returns the topic level matched by the single-level
// wildcard of filter, or the last level when filter has none.
func addressFromTopic(filter, topic string) string {
	levels := strings.Split(topic, "/")

	for i, f := range strings.Split(filter, "/") {
		if f == "+" && i < len(levels) {
			return levels[i]
		}
	}

	if len(levels) < 2 { //nolint:mnd
		return ""
	}

	return levels[len(levels)-1]
}

func (s *Service) messageHandler() mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		raw := msg.Payload()
		address := strings.ToUpper(addressFromTopic(s.topic, msg.Topic()))

		slog.Debug("mqtt payload received", "topic", msg.Topic(), "address", address, "size", len(raw))

		s.receiver.Receive(context.Background(), source, address, raw)
	}
}
