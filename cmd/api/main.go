package main

import (
	"context"
	"log"

	"github.com/Apurer/go-sales-api-server/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("sales API failed: %v", err)
	}
}
