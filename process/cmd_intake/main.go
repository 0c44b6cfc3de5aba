package main

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pickbe/pkg/pickscan"
	"pickbe/process/intake"
)

func main() {
	dir := flag.String("dir", "public/shots", "directory to scan for slip screenshots")
	profileID := flag.Uint("profile-id", 0, "Profile ID to assign screenshots to (if omitted attempts admin profile)")
	dryRun := flag.Bool("dry-run", false, "Skip all DB queries and writes; just scan and extract")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	verbose := flag.Bool("verbose", false, "Verbose per-file logging")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	rec := pickscan.NewTesseractRecognizer()
	defer rec.Close()
	eng := pickscan.NewEngine(rec, log.With().Str("component", "pickscan").Logger())

	opts := intake.Options{
		Dir:       *dir,
		ProfileID: *profileID,
		DryRun:    *dryRun,
		Watch:     *watch,
		Workers:   *workers,
		Verbose:   *verbose,
	}
	if err := intake.Run(eng, opts); err != nil {
		log.Fatal().Err(err).Msg("intake failed")
	}
}
