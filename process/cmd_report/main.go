package main

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pickbe/process/report"
)

func main() {
	user := flag.String("user", "admin", "username to report on")
	month := flag.String("month", time.Now().UTC().Format("2006-01"), "month as YYYY-MM")
	list := flag.Bool("list", false, "also list individual picks")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	report.RunReport(*user, *month, *list)
}
