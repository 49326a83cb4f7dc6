package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremon "github.com/kilianp07/ctr/core/monitoring"
	coremqtt "github.com/kilianp07/ctr/core/mqtt"
	"github.com/kilianp07/ctr/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker       string          `json:"broker"`
	ClientID     string          `json:"client_id"`
	Username     string          `json:"username"`
	Password     string          `json:"password"`
	TopicPrefix  string          `json:"topic_prefix"`
	CommandTopic string          `json:"command_topic"`
	UseTLS       bool            `json:"use_tls"`
	ClientCert   string          `json:"client_cert"`
	ClientKey    string          `json:"client_key"`
	CABundle     string          `json:"ca_bundle"`
	AuthMethod   string          `json:"auth_method"`
	QoS          map[string]byte `json:"qos"`
	LWTTopic     string          `json:"lwt_topic"`
	LWTPayload   string          `json:"lwt_payload"`
	LWTQoS       byte            `json:"lwt_qos"`
	LWTRetain    bool            `json:"lwt_retain"`
	MaxRetries   int             `json:"max_retries"`
	BackoffMS    int             `json:"backoff_ms"`
	TLSConfig    *tls.Config     `json:"-"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient implements the core Publisher interface using Eclipse Paho. It
// also listens on an optional command topic.
type PahoClient struct {
	cli          pahoClient
	commandTopic string
	qos          map[string]byte

	mu         sync.Mutex
	handler    coremqtt.CommandHandler
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the command topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger := logger.New("mqtt_client")
	pc := &PahoClient{
		commandTopic: cfg.CommandTopic,
		logger:       logger,
		qos:          cfg.QoS,
		maxRetries:   cfg.MaxRetries,
		backoff:      time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if pc.maxRetries <= 0 {
		pc.maxRetries = 3
	}
	if pc.backoff <= 0 {
		pc.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		logger.Infof("MQTT connected")
		if pc.commandTopic == "" {
			return
		}
		if token := c.Subscribe(pc.commandTopic, pc.qosFor("command"), pc.onCommand); token.Wait() && token.Error() != nil {
			logger.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config. An empty client id
// is replaced by a random one.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "ctr-" + uuid.NewString()
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

// OnCommand registers the handler for messages on the command topic.
func (p *PahoClient) OnCommand(h coremqtt.CommandHandler) {
	p.mu.Lock()
	p.handler = h
	p.mu.Unlock()
}

func (p *PahoClient) onCommand(_ paho.Client, msg paho.Message) {
	var cmd coremqtt.Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil || cmd.Name == "" {
		p.logger.Errorf("failed to decode command: %v", err)
		return
	}
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	if h == nil {
		p.logger.Warnf("no handler for command %s", cmd.Name)
		return
	}
	p.logger.Infof("received command %s", cmd.Name)
	h(cmd)
}

// Publish sends payload to topic, retrying with exponential backoff. The
// final failure is reported to the monitor.
func (p *PahoClient) Publish(topic string, payload []byte, retained bool) error {
	if p.cli == nil {
		return coremqtt.ErrNotConnected
	}
	qos := p.qosFor("summary")
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, retained, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": topic})
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
