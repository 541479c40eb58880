package light

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/saaga0h/natlight/pkg/mqtt"
)

type mockMessage struct {
	topic   string
	payload []byte
}

func (m *mockMessage) Topic() string   { return m.topic }
func (m *mockMessage) Payload() []byte { return m.payload }

type publishedMessage struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

func (p publishedMessage) decode() map[string]interface{} {
	var out map[string]interface{}
	if err := json.Unmarshal(p.payload, &out); err != nil {
		panic(err)
	}
	return out
}

// mockMQTT records publishes and subscriptions
type mockMQTT struct {
	mu           sync.Mutex
	connected    bool
	disconnected bool
	connectErr   error
	publishErr   error
	published    []publishedMessage
	handlers     map[string]mqtt.MessageHandler
}

func newMockMQTT() *mockMQTT {
	return &mockMQTT{handlers: make(map[string]mqtt.MessageHandler)}
}

func (m *mockMQTT) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = true
	return nil
}

func (m *mockMQTT) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.disconnected = true
}

func (m *mockMQTT) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

func (m *mockMQTT) Publish(topic string, qos byte, retained bool, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, publishedMessage{topic: topic, qos: qos, retained: retained, payload: payload})
	return nil
}

func (m *mockMQTT) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockMQTT) messages(topic string) []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []publishedMessage
	for _, p := range m.published {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

func (m *mockMQTT) deliver(topic, payload string) {
	m.mu.Lock()
	handler := m.handlers[topic]
	m.mu.Unlock()
	if handler == nil {
		panic(fmt.Sprintf("no handler for %s", topic))
	}
	handler(&mockMessage{topic: topic, payload: []byte(payload)})
}

// mockRedis keeps hashes and strings in memory
type mockRedis struct {
	mu        sync.Mutex
	hashes    map[string]map[string]interface{}
	values    map[string]string
	ttls      map[string]time.Duration
	hsetCalls int
	pingErr   error
	closed    bool
}

func newMockRedis() *mockRedis {
	return &mockRedis{
		hashes: make(map[string]map[string]interface{}),
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
		delete(m.hashes, key)
		delete(m.ttls, key)
	}
	return nil
}

func (m *mockRedis) HSetWithTTL(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hsetCalls++
	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]interface{})
	}
	for k, v := range fields {
		m.hashes[key][k] = v
	}
	m.ttls[key] = ttl
	return nil
}

func (m *mockRedis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for k, v := range m.hashes[key] {
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

func (m *mockRedis) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockRedis) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
