package main

import (
	"context"
	"os"

	"github.com/spec-kit/vitalmotion-client/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background(), os.Stdout, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
