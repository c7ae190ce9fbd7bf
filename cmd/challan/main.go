package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/challan-dev/challan/internal/commands"
)

func main() {
	// A missing .env is fine; CHALLAN_* variables may come from the real environment.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
