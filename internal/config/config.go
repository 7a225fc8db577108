package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

const (
	defaultHTTPAddr  = ":8001"
	defaultUDPPort   = ":12345"
	defaultEnableUDP = false

	defaultDevice       = "/dev/ttyACM0"
	defaultDeviceTag    = "ruuvi"
	defaultEnableSerial = false
	defaultBaudRate     = 115200

	defaultEnableMQTT        = false
	defaultBroker            = "tcp://raspberrypi.local:1883"
	defaultClientID          = "ruuvi-sensor"
	defaultKeepAliveDuration = 2 * time.Second
	defaultPingTimeout       = 1 * time.Second
	defaultTopic             = "ruuvi/+/raw"
	defaultPublishEncoding   = "json"

	defaultPushInterval = 10 * time.Second

	defaultMDNSInstance = "ruuvi-sensor"
)

type Config struct {
	Debug     bool
	LogFormat string
	TagsFile  string

	HTTPServer HTTPServer
	UDPServer  UDPServer
	Serial     Serial
	MQTT       MQTT
	Metrics    Metrics
	MDNS       MDNS
}

type HTTPServer struct {
	Addr string
}

type UDPServer struct {
	Enable bool
	Port   string
}

type Serial struct {
	Enable   bool
	PortName string
	BaudRate int
	Tag      string
}

type MQTT struct {
	Enable            bool
	KeepAliveDuration time.Duration
	Broker            string
	ClientID          string
	Username          string
	Password          string
	PingTimeout       time.Duration
	Topic             string
	PublishPrefix     string
	PublishEncoding   string
}

type Metrics struct {
	PushURL      string
	PushInterval time.Duration
}

type MDNS struct {
	Enable   bool
	Instance string
}

// Bind registers every flag on fs. The returned Config is filled in when fs
// is parsed.
func Bind(fs *pflag.FlagSet) *Config {
	cfg := &Config{}

	fs.BoolVar(&cfg.Debug, "app-debug", false, "enable debug logging")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", "log format (text, json)")
	fs.StringVar(&cfg.TagsFile, "tags", "", "YAML file mapping tag addresses to names")

	fs.StringVar(&cfg.HTTPServer.Addr, "http-addr", defaultHTTPAddr, "HTTP server address")

	fs.BoolVar(&cfg.UDPServer.Enable, "udp-enable", defaultEnableUDP, "enable UDP listener")
	fs.StringVar(&cfg.UDPServer.Port, "udp-port", defaultUDPPort, "UDP listener port")

	fs.BoolVar(&cfg.Serial.Enable, "serial-enable", defaultEnableSerial, "enable serial BLE bridge")
	fs.StringVar(&cfg.Serial.PortName, "serial-port", defaultDevice, "serial device path (e.g., /dev/ttyUSB0)")
	fs.IntVar(&cfg.Serial.BaudRate, "serial-baud", defaultBaudRate, "serial baud rate")
	fs.StringVar(&cfg.Serial.Tag, "serial-tag", defaultDeviceTag, "log tag marking advertisement lines")

	fs.BoolVar(&cfg.MQTT.Enable, "mqtt-enable", defaultEnableMQTT, "enable MQTT client")
	fs.StringVar(&cfg.MQTT.Broker, "mqtt-broker", defaultBroker, "MQTT broker URI")
	fs.StringVar(&cfg.MQTT.ClientID, "mqtt-client-id", defaultClientID, "MQTT client id")
	fs.DurationVar(&cfg.MQTT.KeepAliveDuration, "mqtt-keep-alive", defaultKeepAliveDuration, "MQTT keep alive duration")
	fs.DurationVar(&cfg.MQTT.PingTimeout, "mqtt-ping-timeout", defaultPingTimeout, "MQTT ping timeout")
	fs.StringVar(&cfg.MQTT.Username, "mqtt-username", "", "MQTT username")
	fs.StringVar(&cfg.MQTT.Password, "mqtt-password", "", "MQTT password")
	fs.StringVar(&cfg.MQTT.Topic, "mqtt-topic", defaultTopic, "MQTT topic carrying raw advertisements")
	fs.StringVar(&cfg.MQTT.PublishPrefix, "mqtt-publish-prefix", "", "topic prefix for decoded readings (disabled when empty)")
	fs.StringVar(&cfg.MQTT.PublishEncoding, "mqtt-publish-encoding", defaultPublishEncoding, "encoding of decoded readings (json, cbor)")

	fs.StringVar(&cfg.Metrics.PushURL, "metrics-push-url", "", "push metrics to this Prometheus import URL (disabled when empty)")
	fs.DurationVar(&cfg.Metrics.PushInterval, "metrics-push-interval", defaultPushInterval, "metrics push interval")

	fs.BoolVar(&cfg.MDNS.Enable, "mdns-enable", false, "advertise the dashboard over mDNS")
	fs.StringVar(&cfg.MDNS.Instance, "mdns-instance", defaultMDNSInstance, "mDNS instance name")

	return cfg
}

func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (allowed: text, json)", c.LogFormat)
	}

	switch c.MQTT.PublishEncoding {
	case "json", "cbor":
	default:
		return fmt.Errorf("invalid mqtt publish encoding %q (allowed: json, cbor)", c.MQTT.PublishEncoding)
	}

	if c.Serial.Enable && c.Serial.Tag == "" {
		return fmt.Errorf("serial tag must not be empty")
	}

	if c.Metrics.PushURL != "" && c.Metrics.PushInterval <= 0 {
		return fmt.Errorf("metrics push interval must be positive, got %v", c.Metrics.PushInterval)
	}

	return nil
}
