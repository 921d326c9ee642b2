// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig configures the MQTT publisher.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"` // e.g. tcp://localhost:1883
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
	// ClientID defaults to the sink instance ID.
	ClientID string `yaml:"client_id"`
}

// DefaultMQTTTopic is used when MQTTConfig.Topic is empty.
const DefaultMQTTTopic = "spectra/frequency"

const publishTimeout = 5 * time.Second

// ErrNoBroker is returned when MQTTConfig.Broker is empty.
var ErrNoBroker = errors.New("events: mqtt broker not configured")

// mqttClient is the part of mqtt.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPayload is the JSON body of a published event.
type MQTTPayload struct {
	Frequency float64 `json:"frequency"`
	Timestamp int64   `json:"timestamp"`
	Source    string  `json:"source,omitempty"`
}

// MQTTPublisher publishes FrequencySelected events as JSON to a topic.
type MQTTPublisher struct {
	client mqttClient
	topic  string
	qos    byte
	retain bool
	source string
	log    *slog.Logger
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(cfg MQTTConfig, log *slog.Logger) (*MQTTPublisher, error) {
	if cfg.Broker == "" {
		return nil, ErrNoBroker
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	if cfg.ClientID != "" {
		opts.SetClientID(cfg.ClientID)
	}
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("events: mqtt connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("events: mqtt connection lost", "err", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("events: connect to %s: %w", cfg.Broker, token.Error())
	}
	return newMQTTPublisher(client, cfg, log), nil
}

func newMQTTPublisher(client mqttClient, cfg MQTTConfig, log *slog.Logger) *MQTTPublisher {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultMQTTTopic
	}
	return &MQTTPublisher{
		client: client,
		topic:  topic,
		qos:    cfg.QoS,
		retain: cfg.Retain,
		source: cfg.ClientID,
		log:    log,
	}
}

// Publish implements Publisher. Delivery is confirmed in the background.
func (p *MQTTPublisher) Publish(ev FrequencySelected) {
	body, err := json.Marshal(MQTTPayload{
		Frequency: ev.Frequency,
		Timestamp: time.Now().UnixMilli(),
		Source:    p.source,
	})
	if err != nil {
		p.log.Warn("events: encode payload", "err", err)
		return
	}
	token := p.client.Publish(p.topic, p.qos, p.retain, body)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			p.log.Warn("events: mqtt publish timed out", "topic", p.topic)
			return
		}
		if err := token.Error(); err != nil {
			p.log.Warn("events: mqtt publish failed", "topic", p.topic, "err", err)
		}
	}()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
