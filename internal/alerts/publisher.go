package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"
)

type Publisher struct {
	producer *nsq.Producer
	topic    string
	logger   *logrus.Entry
}

func NewPublisher(nsqdAddr, topic string, logger *logrus.Entry) (*Publisher, error) {
	producer, err := nsq.NewProducer(nsqdAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("create NSQ producer failed: %w", err)
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

// Publish sends the breach list for one video. Empty lists are not
// published.
func (p *Publisher) Publish(videoId int, username string, breaches []string) error {
	if len(breaches) == 0 {
		return nil
	}
	msg := Message{
		VideoId:   videoId,
		Username:  username,
		Alerts:    breaches,
		Timestamp: time.Now().UnixMilli(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.producer.Publish(p.topic, body)
}

func (p *Publisher) Stop() {
	p.producer.Stop()
}
