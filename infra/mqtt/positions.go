package mqtt

import (
	"context"
	"encoding/json"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kopong25/freightquick/core/model"
	"github.com/kopong25/freightquick/infra/logger"
)

// PositionReport is a driver-pushed location update. DutyHoursLeft is
// optional; absent means unchanged.
type PositionReport struct {
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	Name          string   `json:"name,omitempty"`
	DutyHoursLeft *float64 `json:"duty_hours_left,omitempty"`
}

// Location converts the report into the core location type.
func (r PositionReport) Location() model.Location {
	return model.Location{Name: r.Name, Lat: r.Lat, Lon: r.Lon}
}

// PositionHandler applies a decoded report for a driver. Errors are logged,
// not retried: the next ping supersedes a lost one.
type PositionHandler func(ctx context.Context, driverID string, report PositionReport) error

// PositionListener subscribes to per-driver position topics
// ("<prefix>/<driverID>/position") and feeds reports to the handler.
type PositionListener struct {
	cli     pahoClient
	handler PositionHandler
	log     logger.Logger
}

// NewPositionListener connects to the broker and subscribes.
func NewPositionListener(cfg Config, handler PositionHandler) (*PositionListener, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.SetClientID(cfg.ClientID + "-positions")

	l := &PositionListener{handler: handler, log: logger.New("mqtt_positions")}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	l.cli = c
	topic := cfg.TopicPrefix + "/+/position"
	if token := c.Subscribe(topic, cfg.QoS, l.onMessage); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	l.log.Infof("subscribed to %s", topic)
	return l, nil
}

func (l *PositionListener) onMessage(_ paho.Client, msg paho.Message) {
	parts := strings.Split(msg.Topic(), "/")
	if len(parts) < 3 {
		l.log.Warnf("malformed position topic %q", msg.Topic())
		return
	}
	driverID := parts[len(parts)-2]
	var report PositionReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		l.log.Warnf("bad position payload from %s: %v", driverID, err)
		return
	}
	if err := l.handler(context.Background(), driverID, report); err != nil {
		l.log.Warnf("position update for %s dropped: %v", driverID, err)
	}
}

// Close disconnects from the broker.
func (l *PositionListener) Close() error {
	l.cli.Disconnect(250)
	return nil
}
