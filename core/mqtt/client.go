package mqtt

// Publisher publishes report payloads to a broker.
type Publisher interface {
	// Publish sends payload to topic. Retained messages are kept by the
	// broker for late subscribers.
	Publish(topic string, payload []byte, retained bool) error
}

// Command is a control message received on the command topic.
type Command struct {
	Name string `json:"command"`
}

// CommandHandler is invoked for every command received.
type CommandHandler func(Command)
