package main

import (
	"context"

	"github.com/mfaerber/kitchenlog/internal/cli"
)

func main() {
	ctx := context.Background()
	cli.Main(ctx)
}
