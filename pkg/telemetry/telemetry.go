// Package telemetry publishes link and update events to an MQTT broker, so a
// bench supervisor can watch a fleet of controllers without a serial cable
// to each.
package telemetry

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robolink/netcop.go/pkg/rcs"
)

// ClientOptionsFromURL creates ClientOptions from URL. The path becomes the
// topic prefix; a client-id query parameter sets the MQTT client id.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// Publisher is a thin MQTT publishing client.
type Publisher struct {
	Client      paho.Client
	TopicPrefix string
}

// NewPublisher creates a Publisher from a broker URL like
// mqtt://host:1883/robots/bench-3?client-id=netsh.
func NewPublisher(brokerURL string) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		Client:      paho.NewClient(opts),
		TopicPrefix: topicPrefix,
	}, nil
}

// Connect connects to the broker.
func (p *Publisher) Connect() error {
	token := p.Client.Connect()
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (p *Publisher) Close() error {
	p.Client.Disconnect(0)
	return nil
}

// Topic joins sub-topic names under the configured prefix.
func (p *Publisher) Topic(names ...string) string {
	topic := strings.Join(names, "/")
	if p.TopicPrefix != "" {
		topic = p.TopicPrefix + "/" + topic
	}
	return topic
}

func (p *Publisher) pub(topic string, payload []byte) {
	token := p.Client.Publish(topic, 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		glog.Warningf("telemetry: publish %s: %v", topic, err)
	}
}

// PublishStatus publishes one update status line. Signature-compatible with
// update.StatusFunc.
func (p *Publisher) PublishStatus(status string) {
	p.pub(p.Topic("update", "status"), []byte(status))
}

// PublishProgress publishes the flash completion percentage.
// Signature-compatible with update.ProgressFunc.
func (p *Publisher) PublishProgress(fraction float64) {
	p.pub(p.Topic("update", "progress"), []byte(fmt.Sprintf("%d", int(fraction*100))))
}

// PublishRCS publishes one region server payload as JSON.
func (p *Publisher) PublishRCS(payload rcs.Payload) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	p.pub(p.Topic("rcs", "state"), data)
}
