package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"crowdwatch/pkg/log"
)

const consumerChannel = "crowdwatch-alerts"

// Consumer tails the alert topic and logs each breach message. It is
// the operational end of the threshold side-channel.
type Consumer struct {
	ctx      context.Context
	cancel   context.CancelFunc
	consumer *nsq.Consumer
	nsqdAddr string
	logger   *logrus.Entry
}

func NewConsumer(nsqdAddr, topic string) (*Consumer, error) {
	ctx, cancel := context.WithCancel(context.Background())
	logger := log.WithComponent(ctx, "alerts")

	config := nsq.NewConfig()
	config.MsgTimeout = time.Minute
	config.MaxInFlight = 10
	config.MaxAttempts = 2

	consumer, err := nsq.NewConsumer(topic, consumerChannel, config)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create NSQ consumer: %w", err)
	}

	c := &Consumer{
		ctx:      ctx,
		cancel:   cancel,
		consumer: consumer,
		nsqdAddr: nsqdAddr,
		logger:   logger,
	}
	consumer.AddHandler(c)

	return c, nil
}

func (c *Consumer) HandleMessage(message *nsq.Message) error {
	var msg Message
	if err := json.Unmarshal(message.Body, &msg); err != nil {
		c.logger.WithError(err).Error("failed to unmarshal alert message")
		return err
	}

	entry := c.logger.WithFields(logrus.Fields{
		"videoId":   msg.VideoId,
		"username":  msg.Username,
		"timestamp": time.UnixMilli(msg.Timestamp).Format(time.RFC3339),
	})
	for _, breach := range msg.Alerts {
		entry.Warn(breach)
	}
	return nil
}

func (c *Consumer) Start() error {
	return c.consumer.ConnectToNSQD(c.nsqdAddr)
}

func (c *Consumer) Stop() {
	c.cancel()
	c.consumer.Stop()
	<-c.consumer.StopChan
}
