package broadcast

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Broadcast topics consumed by subscribed observers.
const (
	TopicDeviceData       = "device-data-update"
	TopicConsumptionToday = "consumption-today-update"
)

// Publisher fans snapshot batches out over MQTT as JSON payloads.
type Publisher struct {
	client mqtt.Client
}

func Connect(broker, clientID string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return &Publisher{client: client}, nil
}

func (p *Publisher) Publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", topic, err)
	}
	if token := p.client.Publish(topic, 0, false, data); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
