package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"crowdwatch/internal/alerts"
	"crowdwatch/internal/backend"
	"crowdwatch/internal/config"
	"crowdwatch/internal/server"
	"crowdwatch/internal/session"
	"crowdwatch/pkg/log"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the crowdwatch session daemon",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func runServe() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	logrus.Infof("config: %+v", conf)

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	store, err := session.OpenStore(conf.DataDir(), log.WithComponent(ctx, "store"))
	if err != nil {
		logrus.Fatalf("open session store: %s", err.Error())
	}
	defer store.Close()

	cli := backend.NewClient(ctx, conf.BackendAddr)
	if info, err2 := store.GetAuthInfo(); err2 != nil {
		logrus.WithError(err2).Error("read auth info")
	} else if info != nil && info.Token != "" {
		if backend.TokenExpired(info.Token, time.Now()) {
			logrus.Warnf("stored access token for %s has expired, log in again", info.Username)
		}
		cli.SetToken(info.Token)
	}

	controller := session.NewController(ctx, conf, store, cli)

	var alertPub *alerts.Publisher
	if conf.Alerts.Enabled && conf.Alerts.NSQ.NSQDAddr != "" {
		alertPub, err = alerts.NewPublisher(conf.Alerts.NSQ.NSQDAddr, conf.Alerts.NSQ.Topic, log.WithComponent(ctx, "alerts"))
		if err != nil {
			logrus.Fatalf("create alert publisher: %s", err.Error())
		}
		defer alertPub.Stop()
		controller.WithAlertPublisher(alertPub)
	}

	if conf.S3.Enabled {
		region := conf.S3.Region
		if region == "" {
			region = "us-east-1"
		}
		minioCli, err2 := minio.New(conf.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(conf.S3.AccessKeyID, conf.S3.SecretAccessKey, ""),
			Secure: conf.S3.UseSSL,
			Region: region,
		})
		if err2 != nil {
			logrus.Fatalf("create minio client: %s", err2.Error())
		}
		controller.WithArchiver(session.NewArchiver(minioCli, conf.S3.Bucket, log.WithComponent(ctx, "archiver")))
	}

	reconciler := session.NewReconciler(ctx, conf, store, cli)

	srv := server.NewServer(ctx, conf, store, controller, reconciler, cli)
	go srv.Start()

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("crowdwatch is shutting down...")
	srv.Shutdown()
	controller.StopAll()
	cancelFunc()
}
