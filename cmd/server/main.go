package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mysticvn/boitoan/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using environment as-is")
	}

	srv, err := server.NewServer()
	if err != nil {
		logrus.WithError(err).Fatal("failed to bootstrap server")
	}

	r := srv.SetupRouter()

	logrus.WithField("port", srv.Port()).Info("starting boitoan API server")
	if err := r.Run(":" + srv.Port()); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
