// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package events

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func TestChanPublisher(t *testing.T) {
	p := NewChan(2)
	p.Publish(FrequencySelected{Frequency: 1})
	p.Publish(FrequencySelected{Frequency: 2})
	p.Publish(FrequencySelected{Frequency: 3})

	if p.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", p.Dropped())
	}
	for _, want := range []float64{1, 2} {
		if ev := <-p.C(); ev.Frequency != want {
			t.Errorf("received %v, want %v", ev.Frequency, want)
		}
	}
}

func TestMulti(t *testing.T) {
	var got []float64
	rec := PublisherFunc(func(ev FrequencySelected) { got = append(got, ev.Frequency) })
	Multi{rec, nil, rec}.Publish(FrequencySelected{Frequency: 7})
	if len(got) != 2 {
		t.Errorf("fan-out delivered %d events, want 2", len(got))
	}
}

type fakeToken struct {
	err error
}

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Done() <-chan struct{}          { c := make(chan struct{}); close(c); return c }
func (t fakeToken) Error() error                 { return t.err }

type fakeClient struct {
	mu           sync.Mutex
	topics       []string
	payloads     [][]byte
	qos          byte
	retained     bool
	disconnected bool
	err          error
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	c.qos, c.retained = qos, retained
	return fakeToken{err: c.err}
}

func (c *fakeClient) Disconnect(uint) {
	c.disconnected = true
}

func TestMQTTPublisher(t *testing.T) {
	client := &fakeClient{}
	p := newMQTTPublisher(client, MQTTConfig{QoS: 1, Retain: true, ClientID: "sink-1"}, discardLogger())

	p.Publish(FrequencySelected{Frequency: 145.5e6})

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.topics) != 1 || client.topics[0] != DefaultMQTTTopic {
		t.Fatalf("topics = %v, want [%s]", client.topics, DefaultMQTTTopic)
	}
	if client.qos != 1 || !client.retained {
		t.Errorf("qos/retain = %d/%v, want 1/true", client.qos, client.retained)
	}
	var payload MQTTPayload
	if err := json.Unmarshal(client.payloads[0], &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Frequency != 145.5e6 || payload.Source != "sink-1" || payload.Timestamp == 0 {
		t.Errorf("payload = %+v", payload)
	}

	p.Close()
	if !client.disconnected {
		t.Error("Close() did not disconnect")
	}
}

func TestMQTTPublisherCustomTopic(t *testing.T) {
	client := &fakeClient{err: errors.New("broker gone")}
	p := newMQTTPublisher(client, MQTTConfig{Topic: "radio/click"}, discardLogger())
	p.Publish(FrequencySelected{Frequency: 1})
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.topics[0] != "radio/click" {
		t.Errorf("topic = %q, want radio/click", client.topics[0])
	}
}

func TestNewMQTTPublisherNoBroker(t *testing.T) {
	if _, err := NewMQTTPublisher(MQTTConfig{}, nil); !errors.Is(err, ErrNoBroker) {
		t.Errorf("NewMQTTPublisher() error = %v, want ErrNoBroker", err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
