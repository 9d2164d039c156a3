// Package main provides the entry point for the Competency Model API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "competency_api",
	Short: "Competency Model Chatbot API",
	Long:  "Competency Model maps free-text job titles to ranked occupational skills and abilities using embedding similarity search over O*NET survey data.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
