package main

import (
	"os"
	"strings"

	"pickbe/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal().Msg("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect postgres database")
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Ensure the roles master table exists first and seed it so users FK can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Warn().Err(err).Msg("migration warning (roles)")
		}
	}
	seedRoles()

	// Now migrate the rest (users will get FK to roles)
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Warn().Err(err).Msg("migration warning (users)")
		}
		if err := db.AutoMigrate(&models.Pick{}); err != nil {
			log.Warn().Err(err).Msg("migration warning (picks)")
		}
		if err := db.AutoMigrate(&models.Profile{}); err != nil {
			log.Warn().Err(err).Msg("migration warning (profiles)")
		}
		if err := db.AutoMigrate(&models.Screenshot{}); err != nil {
			log.Warn().Err(err).Msg("migration warning (screenshots)")
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Warn().Err(err).Msg("migration warning (refresh_tokens)")
		}
	}

	// Ensure screenshots -> profiles FK exists (in case table existed before adding ProfileID)
	if shouldMigrate {
		if err := ensureScreenshotProfileFK(); err != nil {
			log.Warn().Err(err).Msg("ensuring screenshots->profiles FK failed")
		}
	}
	seedDB()
}

// ensureScreenshotProfileFK adds the profile_id column and FK constraint if they are missing.
func ensureScreenshotProfileFK() error {
	// 1. Ensure profile_id column exists
	if err := db.Exec(`ALTER TABLE screenshots ADD COLUMN IF NOT EXISTS profile_id BIGINT`).Error; err != nil {
		return err
	}
	// 2. Create index (idempotent)
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_screenshots_profile_id ON screenshots(profile_id)`).Error; err != nil {
		return err
	}
	// 3. Check if FK already present
	type cnt struct{ N int }
	var c cnt
	fkCheckSQL := `SELECT count(*) AS n
		FROM pg_constraint ct
		JOIN pg_class rel ON rel.oid = ct.conrelid
		WHERE rel.relname = 'screenshots' AND ct.contype = 'f'
		  AND pg_get_constraintdef(ct.oid) ILIKE '%profile_id%' AND pg_get_constraintdef(ct.oid) ILIKE '%profiles%'`
	if err := db.Raw(fkCheckSQL).Scan(&c).Error; err != nil {
		return err
	}
	if c.N == 0 {
		// 4. Add FK (will fail if existing nulls & NOT NULL required; leave NOT NULL to AutoMigrate)
		if err := db.Exec(`ALTER TABLE screenshots
			ADD CONSTRAINT fk_screenshots_profiles
			FOREIGN KEY (profile_id) REFERENCES profiles(id)
			ON UPDATE CASCADE ON DELETE CASCADE`).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedRoles() {
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

func seedDB() {
	seedRoles()

	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		// find administrator role id
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Warn().Err(err).Msg("failed to find administrator role")
		}
		// Seed admin user
		rid := role.ID
		admin := models.User{
			Username: "admin",
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Info().Msg("Seeded admin user: username=admin, password=admin123")
	}
	// Ensure admin has a one-to-one profile
	var admin models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		log.Warn().Err(err).Msg("failed to find admin user after seeding")
		return
	}
	var pcount int64
	db.Model(&models.Profile{}).Where("user_id = ?", admin.ID).Count(&pcount)
	if pcount == 0 {
		profile := models.Profile{UserID: admin.ID, Name: "Administrator", Email: "admin@example.com"}
		if err := db.Create(&profile).Error; err != nil {
			log.Warn().Err(err).Msg("failed to create profile for admin")
		} else {
			log.Info().Uint("user_id", admin.ID).Msg("seeded admin profile")
		}
	}
	// Ensure screenshot directory exists
	ensureScreenshotBase()
}

// ensureScreenshotBase creates the base screenshots directory.
func ensureScreenshotBase() {
	base := screenshotBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Warn().Err(err).Str("dir", base).Msg("failed to create screenshot base dir")
	}
}

// screenshotBaseDir returns the base directory for stored screenshots (configurable via SCREENSHOT_BASE env)
func screenshotBaseDir() string {
	if v := os.Getenv("SCREENSHOT_BASE"); v != "" {
		return v
	}
	return "screenshots"
}
