package mqtt

import "sync"

// Message is a payload captured by MemoryPublisher.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// MemoryPublisher keeps published messages in memory. It is used in tests
// and when no broker is configured.
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []Message
	FailOn   map[string]error
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{FailOn: map[string]error{}}
}

// Publish records the message or returns the error configured for topic.
func (m *MemoryPublisher) Publish(topic string, payload []byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailOn[topic]; err != nil {
		return err
	}
	m.messages = append(m.messages, Message{Topic: topic, Payload: append([]byte(nil), payload...), Retained: retained})
	return nil
}

// Messages returns a copy of the published messages in order.
func (m *MemoryPublisher) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// Retained returns the last retained payload per topic.
func (m *MemoryPublisher) Retained() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string][]byte{}
	for _, msg := range m.messages {
		if msg.Retained {
			out[msg.Topic] = msg.Payload
		}
	}
	return out
}
