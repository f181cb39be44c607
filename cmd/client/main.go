package main

import (
	"context"

	"github.com/daybook-app/daybook/internal/client/cli"
)

func main() {
	cli.Execute(context.Background())
}
