package main

import (
	"log"
	"os"

	"github.com/BartekS5/posts-etl/internal/cli"
	"github.com/BartekS5/posts-etl/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := cli.NewRootCmd()
	err := rootCmd.Execute()
	if err != nil {
		logger.Errorf("ERROR: %v", err)
	}
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
