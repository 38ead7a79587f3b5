package main

import (
	"context"
	"os"

	"asnconvert/internal/app"
)

func main() {
	os.Exit(app.RunCLI(context.Background(), os.Args[1:], os.Stdout))
}
