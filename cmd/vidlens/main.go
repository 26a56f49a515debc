package main

import "github.com/joho/godotenv"

func main() {
	// Local .env is optional; missing files are fine.
	_ = godotenv.Load()
	execute()
}
