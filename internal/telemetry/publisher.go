package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/logger"
)

// Sink receives readings and alerts.
type Sink interface {
	PublishPosition(ctx context.Context, p hive.Position) error
	PublishWeather(ctx context.Context, r hive.WeatherReading, sequence int) error
	PublishAlert(ctx context.Context, a hive.Alert) error
	Close()
}

// Noop discards everything.
type Noop struct{}

// PublishPosition discards p.
func (Noop) PublishPosition(context.Context, hive.Position) error { return nil }

// PublishWeather discards r.
func (Noop) PublishWeather(context.Context, hive.WeatherReading, int) error { return nil }

// PublishAlert discards a.
func (Noop) PublishAlert(context.Context, hive.Alert) error { return nil }

// Close does nothing.
func (Noop) Close() {}

const (
	alertQoS     = 1
	readingQoS   = 0
	disconnectMs = 250
)

// errNotConnected is returned while the broker connection is down.
var errNotConnected = errors.New("mqtt client not connected")

// Publisher sends JSON messages to hives/<station>/<kind>.
type Publisher struct {
	client  paho.Client
	station string
	timeout time.Duration
}

// Open returns Noop when no broker is configured, otherwise a Publisher that
// connects in the background and keeps reconnecting.
//
//nolint:ireturn // Callers only need the Sink behaviour.
func Open(ctx context.Context, cfg config.MQTTConfig, station string) Sink {
	if cfg.Broker == "" {
		return Noop{}
	}

	ctx = logger.WithKV(ctx, "broker", cfg.Broker, "port", cfg.Port)

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, station))
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(paho.Client) {
		logger.Info(ctx, "MQTT connected")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.WarnKV(ctx, "MQTT connection lost", "error", err)
	})

	p := &Publisher{
		client:  paho.NewClient(opts),
		station: station,
		timeout: cfg.Timeout,
	}

	// With ConnectRetry the token completes only once connected; publishing
	// before that fails fast with errNotConnected.
	p.client.Connect()

	logger.Info(ctx, "MQTT telemetry enabled")

	return p
}

// PublishPosition publishes p to the position topic.
func (p *Publisher) PublishPosition(_ context.Context, pos hive.Position) error {
	return p.publish(KindPosition, readingQoS, newPositionPayload(p.station, pos))
}

// PublishWeather publishes r to the weather topic.
func (p *Publisher) PublishWeather(_ context.Context, r hive.WeatherReading, sequence int) error {
	return p.publish(KindWeather, readingQoS, newWeatherPayload(p.station, r, sequence))
}

// PublishAlert publishes a to the alerts topic with at-least-once delivery.
func (p *Publisher) PublishAlert(_ context.Context, a hive.Alert) error {
	return p.publish(KindAlerts, alertQoS, newAlertPayload(p.station, a))
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(disconnectMs)
}

// publish encodes payload and waits for the broker acknowledgement up to the timeout.
func (p *Publisher) publish(kind string, qos byte, payload any) error {
	if !p.client.IsConnected() {
		return errNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}

	topic := Topic(p.station, kind)

	token := p.client.Publish(topic, qos, false, data)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	return nil
}
