package main

import (
	"log"

	"github.com/tech-arch1tect/accounts/app"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	app.Version = version

	application, err := app.NewApp().WithAutoConfig().Build()
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	application.Run()
}
