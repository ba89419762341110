package main

import (
	"go-pharmacy-reservation/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", ".env", "path to the env configuration file")
	pflag.Parse()

	// Initialize application with all dependencies
	app, err := bootstrap.New(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	// Run the application
	if err := app.Run(); err != nil {
		logrus.Fatalf("Application stopped with error: %v", err)
	}
}
