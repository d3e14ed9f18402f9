package main

import (
	"os"

	"scribe-ai/backend/internal/app"
)

func main() {
	os.Exit(app.Run())
}
