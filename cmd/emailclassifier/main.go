// Email Classifier - CLI Entry Point
//
// This is the main entry point for the email classification client. It
// loads .env for development and dispatches to the cobra commands.
package main

import (
	"github.com/email-classifier/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cli.Execute()
}
