package cmd

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"crowdwatch/internal/backend"
	"crowdwatch/internal/config"
	"crowdwatch/internal/session"
	"crowdwatch/pkg/log"
)

var (
	loginUsername string
	loginPassword string
)

var loginCommand = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the backend and persist the token",
	Run: func(cmd *cobra.Command, args []string) {
		runLogin()
	},
}

func init() {
	loginCommand.Flags().StringVarP(&loginUsername, "username", "u", "", "Backend username")
	loginCommand.Flags().StringVarP(&loginPassword, "password", "p", "", "Backend password")
	loginCommand.MarkFlagRequired("username")
	loginCommand.MarkFlagRequired("password")
}

func runLogin() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	ctx := context.Background()

	store, err := session.OpenStore(conf.DataDir(), log.WithComponent(ctx, "store"))
	if err != nil {
		logrus.Fatalf("open session store: %s", err.Error())
	}
	defer store.Close()

	cli := backend.NewClient(ctx, conf.BackendAddr)
	resp, err := cli.Login(ctx, loginUsername, loginPassword)
	if err != nil {
		logrus.WithError(err).Fatal("login failed")
	}

	info := &session.AuthInfo{
		Username:  loginUsername,
		Token:     resp.AccessToken,
		Role:      resp.Role,
		LoginTime: time.Now().Format(time.RFC3339),
	}
	if err := store.SetAuthInfo(info); err != nil {
		logrus.WithError(err).Fatal("persist auth info")
	}

	logrus.Infof("logged in as %s (%s)", loginUsername, resp.Role)
}
