package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"crowdwatch/internal/alerts"
	"crowdwatch/internal/config"
)

var alertsCommand = &cobra.Command{
	Use:   "alerts",
	Short: "Consume threshold alerts from NSQ",
	Run: func(cmd *cobra.Command, args []string) {
		runAlerts()
	},
}

func runAlerts() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	consumer, err := alerts.NewConsumer(conf.Alerts.NSQ.NSQDAddr, conf.Alerts.NSQ.Topic)
	if err != nil {
		logrus.Fatalf("create alert consumer: %s", err.Error())
	}
	if err := consumer.Start(); err != nil {
		logrus.Fatalf("connect alert consumer: %s", err.Error())
	}

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("alert consumer is shutting down...")
	consumer.Stop()
}
