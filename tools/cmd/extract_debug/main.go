package main

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strconv"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"

	"pickbe/pkg/pickscan"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("usage: go run ./tools/cmd/extract_debug <image> <click_x> <click_y>")
		os.Exit(2)
	}
	path := os.Args[1]
	x, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Printf("bad click_x: %v\n", err)
		os.Exit(2)
	}
	y, err := strconv.Atoi(os.Args[3])
	if err != nil {
		fmt.Printf("bad click_y: %v\n", err)
		os.Exit(2)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("read %s: %v\n", path, err)
		os.Exit(1)
	}

	rec := pickscan.NewTesseractRecognizer()
	defer rec.Close()
	eng := pickscan.NewEngine(rec, zerolog.New(os.Stderr).With().Timestamp().Logger())

	click := pickscan.ClickContext{Position: image.Pt(x, y)}
	if cfg, _, derr := image.DecodeConfig(bytes.NewReader(data)); derr == nil {
		click.ImageSize = image.Pt(cfg.Width, cfg.Height)
	}

	pick, err := eng.ExtractPick(data, click)
	fmt.Printf("ExtractPick err=%v\n", err)
	if pick != nil {
		fmt.Printf("game=%q team1=%q team2=%q\n", pick.GameText, pick.Team1, pick.Team2)
		fmt.Printf("odds=%q market=%q click=%q\n", pick.Odds, pick.MarketType, pick.ClickPosition)
	}
}
