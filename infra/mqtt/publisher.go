package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/dualportal/core/logger"
	"github.com/kilianp07/dualportal/core/model"
	"github.com/kilianp07/dualportal/internal/eventbus"
)

// Config defines the connection parameters for the snapshot publisher.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = fmt.Sprintf("dualportal-%s", uuid.NewString()[:8])
	}
	if c.Topic == "" {
		c.Topic = "dualportal/snapshot"
	}
}

// Validate checks mandatory fields when the publisher is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("broker is required when mqtt export is enabled")
	}
	return nil
}

// SnapshotPublisher exports every simulation snapshot to an MQTT topic.
type SnapshotPublisher struct {
	cli   paho.Client
	topic string
	qos   byte
	log   logger.Logger
}

// NewSnapshotPublisher connects to the MQTT broker.
func NewSnapshotPublisher(cfg Config, log logger.Logger) (*SnapshotPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &SnapshotPublisher{cli: cli, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

// Start subscribes to the snapshot bus and publishes each snapshot until
// the context is canceled.
func (p *SnapshotPublisher) Start(ctx context.Context, bus *eventbus.Bus[model.SimulationSnapshot]) {
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-sub:
				if !ok {
					return
				}
				p.publish(snap)
			}
		}
	}()
}

func (p *SnapshotPublisher) publish(snap model.SimulationSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		p.log.Errorf("marshal snapshot: %v", err)
		return
	}
	token := p.cli.Publish(p.topic, p.qos, false, data)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		p.log.Warnf("publish snapshot: %v", token.Error())
	}
}

// Close disconnects from the broker.
func (p *SnapshotPublisher) Close() {
	p.cli.Disconnect(250)
}
