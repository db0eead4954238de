package main

import (
	"github.com/joho/godotenv"

	"sjsage522/patentworker/cmd"
	"sjsage522/patentworker/logger"
)

var version = "dev"

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	cmd.Execute(version)
}
