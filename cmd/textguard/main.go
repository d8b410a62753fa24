package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/harrison/textguard/internal/cmd"
)

func main() {
	// TEXTGUARD_HOME and TEXTGUARD_KEYWORDS may come from a .env file
	_ = godotenv.Load()

	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
