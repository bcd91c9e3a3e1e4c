package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"crowdwatch/internal/backend"
	"crowdwatch/internal/config"
	"crowdwatch/internal/session"
	"crowdwatch/pkg/log"
)

var analyzeFollow bool

var analyzeCommand = &cobra.Command{
	Use:   "analyze <video_id>",
	Short: "Run a streaming analysis session for a video",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		videoId, err := strconv.Atoi(args[0])
		if err != nil {
			logrus.Fatalf("invalid video id: %s", args[0])
		}
		runAnalyze(videoId)
	},
}

func init() {
	analyzeCommand.Flags().BoolVar(&analyzeFollow, "follow", true, "Follow the session until it finishes")
}

func runAnalyze(videoId int) {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	store, err := session.OpenStore(conf.DataDir(), log.WithComponent(ctx, "store"))
	if err != nil {
		logrus.Fatalf("open session store: %s", err.Error())
	}
	defer store.Close()

	info, err := store.GetAuthInfo()
	if err != nil {
		logrus.WithError(err).Fatal("read auth info")
	} else if info == nil || info.Username == "" {
		logrus.Fatal("not logged in, run `crowdwatch login` first")
	}

	cli := backend.NewClient(ctx, conf.BackendAddr)
	cli.SetToken(info.Token)

	zones, err := cli.ListZones(ctx, videoId)
	if err != nil {
		logrus.WithError(err).Fatal("list zones")
	}

	controller := session.NewController(ctx, conf, store, cli)
	s, err := controller.Start(videoId, info.Username, zones)
	if err != nil {
		logrus.WithError(err).Fatal("start analysis")
	}

	if !analyzeFollow {
		logrus.Infof("analysis for video %d started in background", videoId)
		// Keep the process alive until the session finishes; the live
		// record keeps other readers in the picture meanwhile.
		<-s.Done()
		return
	}

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(conf.Stream.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-termChan:
			logrus.Info("stopping analysis...")
			controller.Stop(videoId)
			<-s.Done()
			return
		case <-ticker.C:
			live, err2 := store.GetLive(videoId)
			if err2 == nil && live != nil {
				logrus.Infof("progress %d%%, live counts %v, max counts %v", live.Progress, live.LiveCounts, live.MaxCounts)
			}
		case <-s.Done():
			if s.Err() != nil {
				logrus.WithError(s.Err()).Fatal("analysis failed")
			}
			if result := s.Result(); result != nil {
				logrus.Infof("analysis finished: total count %d", result.TotalCount)
				for _, zone := range result.ZoneCounts {
					logrus.Infof("  %s: %d", zone.ZoneLabel, zone.Count)
				}
			} else {
				logrus.Info("analysis stopped")
			}
			return
		}
	}
}
