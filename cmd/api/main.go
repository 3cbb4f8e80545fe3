package main

import (
	"fmt"
	"os"

	"github.com/ayo6706/banking-agent/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "banking-agent: %v\n", err)
		os.Exit(1)
	}
}
