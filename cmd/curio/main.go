package main

import (
	"log"

	"github.com/curioapp/curio/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ curio failed to start: %v", err)
	}
}
