package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pickbe/pkg/pickscan"
)

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

// engine is the shared extraction engine; built once in main around a single
// tesseract recognizer and released on shutdown.
var engine *pickscan.Engine

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load ./.env if present before reading vars (never overwrites variables
	// that are already set).
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not found, using process environment")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	jwtSecret = []byte(secret)

	// Support a lightweight migrate command: `./pickbe migrate`
	// It runs AutoMigrate and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()

	rec := pickscan.NewTesseractRecognizer()
	defer rec.Close()
	engine = pickscan.NewEngine(rec, log.With().Str("component", "pickscan").Logger())

	r := gin.Default()

	setupRoutes(r)

	if err := r.Run(":8081"); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
