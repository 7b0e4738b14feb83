package main

import (
	"github.com/joho/godotenv"

	"github.com/cityhunt/cityhunt/internal/cli"
)

func main() {
	_ = godotenv.Load()

	cli.Execute()
}
