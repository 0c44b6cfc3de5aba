package report

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pickbe/models"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal().Msg("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	return gdb
}

// RunReport prints a month-bounded pick report for username (month in
// YYYY-MM): totals per market type, then optionally the matching rows.
func RunReport(username, month string, list bool) {
	gdb := mustDBFromEnv()

	var user models.User
	if err := gdb.Where("username = ?", username).First(&user).Error; err != nil {
		log.Fatal().Err(err).Msg("user not found")
	}

	t, err := time.Parse("2006-01", month)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid month format, expected YYYY-MM")
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	type row struct {
		MarketType string
		Cnt        int64
	}
	var rows []row
	if err := gdb.Raw(`SELECT market_type, COUNT(*) AS cnt FROM picks
		WHERE user_id = ? AND extracted_at >= ? AND extracted_at < ?
		GROUP BY market_type ORDER BY cnt DESC`, user.ID, start, end).Scan(&rows).Error; err != nil {
		log.Fatal().Err(err).Msg("query failed")
	}

	fmt.Printf("picks for %s in %s:\n", username, month)
	var total int64
	for _, r := range rows {
		fmt.Printf("  %-10s %d\n", r.MarketType, r.Cnt)
		total += r.Cnt
	}
	fmt.Printf("  total      %d\n", total)

	if list {
		var picks []models.Pick
		if err := gdb.Where("user_id = ? AND extracted_at >= ? AND extracted_at < ?", user.ID, start, end).
			Order("extracted_at").Find(&picks).Error; err != nil {
			log.Fatal().Err(err).Msg("list failed")
		}
		for _, p := range picks {
			fmt.Printf("  %s  %-30s %-8s %-10s %s\n",
				p.ExtractedAt.Format("2006-01-02"), p.GameText, p.Odds, p.MarketType, p.FileName)
		}
	}
}
