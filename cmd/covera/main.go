package main

import (
	"os"

	"github.com/covera-io/covera/cmd/covera/commands"
)

// main is the entry point for the Covera CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/covera [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
