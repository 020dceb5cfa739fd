package main

import (
	"log"

	"github.com/fredck/torrentbot/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ torrentbot failed to start: %v", err)
	}
}
