package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/spigell/job-matcher/cmd"
)

func main() {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
