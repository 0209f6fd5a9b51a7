package main

import (
	"context"
	"os"

	"github.com/drone/drone-junit/plugin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

func main() {
	if envFile := os.Getenv("PLUGIN_ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			logrus.WithError(err).WithField("File", envFile).Fatal("Failed to load env file")
		}
	}

	var args plugin.Args
	if err := envconfig.Process("", &args); err != nil {
		logrus.WithError(err).Fatal("Failed to read plugin configuration")
	}

	level, err := logrus.ParseLevel(args.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if err := plugin.ValidateInputs(args); err != nil {
		logrus.WithError(err).Fatal("Invalid plugin configuration")
	}
	if err := plugin.Exec(context.Background(), args); err != nil {
		logrus.Fatalln(err)
	}
}
