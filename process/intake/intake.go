// Package intake scans a directory of slip screenshots, registers them as
// Screenshot rows and runs pick extraction over each one. Batch intake has no
// user tap, so the image center is used as the synthetic click point.
package intake

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pickbe/models"
	"pickbe/pkg/pickscan"
)

// Options controls one intake run.
type Options struct {
	Dir       string
	ProfileID uint // 0 = resolve the admin profile
	DryRun    bool
	Watch     bool
	Workers   int // 0 = NumCPU
	Verbose   bool
}

// MIME mapping to avoid opening files repeatedly
var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// preload caches
type preloadState struct {
	shotsByFile map[string]*models.Screenshot // fileName -> screenshot
	picksByFile map[string]*models.Pick       // fileName -> pick
	mu          sync.RWMutex
}

func newPreloadState() *preloadState {
	return &preloadState{
		shotsByFile: make(map[string]*models.Screenshot, 1024),
		picksByFile: make(map[string]*models.Pick, 1024),
	}
}

func (ps *preloadState) getShot(name string) (*models.Screenshot, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	s, ok := ps.shotsByFile[name]
	return s, ok
}
func (ps *preloadState) putShot(s *models.Screenshot) {
	ps.mu.Lock()
	ps.shotsByFile[s.FileName] = s
	ps.mu.Unlock()
}
func (ps *preloadState) getPick(name string) (*models.Pick, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.picksByFile[name]
	return p, ok
}
func (ps *preloadState) putPick(p *models.Pick) {
	ps.mu.Lock()
	ps.picksByFile[p.FileName] = p
	ps.mu.Unlock()
}

type runner struct {
	db      *gorm.DB
	eng     *pickscan.Engine
	opts    Options
	verbose bool
}

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal().Msg("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	return gdb
}

// Run executes the intake pass. Idempotent: screenshots already linked to a
// pick are skipped, so re-running over the same directory is safe.
func Run(eng *pickscan.Engine, opts Options) error {
	r := &runner{eng: eng, opts: opts, verbose: opts.Verbose}

	if opts.DryRun {
		log.Info().Str("dir", opts.Dir).Msg("dry-run: scanning (no DB interaction)")
		files := listImageFiles(opts.Dir)
		log.Info().Int("files", len(files)).Msg("candidate files")
		for _, f := range files {
			full := filepath.Join(opts.Dir, f)
			if res, err := r.extractCentered(full); err == nil {
				r.logV("extract %s odds=%s market=%s game=%q", f, res.Odds, res.MarketType, res.GameText)
			} else {
				r.logV("extract %s: %v", f, err)
			}
		}
		return nil
	}

	r.db = mustDBFromEnv()
	profile := r.resolveProfile(opts.ProfileID)
	ps := r.preloadAll(profile)
	log.Info().Int("screenshots", len(ps.shotsByFile)).Int("picks", len(ps.picksByFile)).Msg("preloaded")

	files := listImageFiles(opts.Dir)
	workers := effectiveWorkers(opts.Workers)
	log.Info().Int("files", len(files)).Int("workers", workers).Msg("scanning")
	r.runWorkerPool(profile, ps, files, workers)

	if opts.Watch {
		if err := r.watchDirectory(profile, ps, workers); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
	}
	return nil
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func (r *runner) logV(format string, args ...any) {
	if r.verbose {
		log.Info().Msgf(format, args...)
	}
}

// preloadAll fetches existing screenshots and picks to minimize per-file queries.
func (r *runner) preloadAll(profile models.Profile) *preloadState {
	ps := newPreloadState()
	var shots []models.Screenshot
	if err := r.db.Where("profile_id = ?", profile.ID).Find(&shots).Error; err == nil {
		for i := range shots {
			s := shots[i]
			ps.shotsByFile[s.FileName] = &s
		}
	}
	var picks []models.Pick
	if err := r.db.Where("user_id = ?", profile.UserID).Find(&picks).Error; err == nil {
		for i := range picks {
			p := picks[i]
			ps.picksByFile[p.FileName] = &p
		}
	}
	return ps
}

// resolveProfile finds the profile either by explicit id or by admin username.
func (r *runner) resolveProfile(id uint) models.Profile {
	var p models.Profile
	if id != 0 {
		if err := r.db.First(&p, id).Error; err != nil {
			log.Fatal().Err(err).Uint("profile_id", id).Msg("failed to find profile")
		}
		return p
	}
	var admin models.User
	if err := r.db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		log.Fatal().Err(err).Msg("no --profile-id provided and admin user not found")
	}
	if err := r.db.Where("user_id = ?", admin.ID).First(&p).Error; err != nil {
		log.Fatal().Err(err).Msg("admin profile not found")
	}
	return p
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func (r *runner) watchDirectory(profile models.Profile, ps *preloadState, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(r.opts.Dir); err != nil {
		return err
	}
	log.Info().Str("dir", r.opts.Dir).Msg("watching (debounced)")

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Warn().Err(err).Msg("watch error")
			}
		}
	}()

	// Use worker pool for watch events too
	go r.runWorkerPool(profile, ps, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}

func isSupportedExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}

// worker pool orchestrator
func (r *runner) runWorkerPool(profile models.Profile, ps *preloadState, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				r.processSingleFile(name, profile, ps)
			}
		}()
	}
	// feed initial
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		// also relay from extra channels if provided
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		// if no extraCh (scan only) close when done
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// extractCentered runs the engine with the image center as the click point.
func (r *runner) extractCentered(fullPath string) (*pickscan.PickExtraction, error) {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	click := pickscan.ClickContext{
		Position:  image.Pt(cfg.Width/2, cfg.Height/2),
		ImageSize: image.Pt(cfg.Width, cfg.Height),
	}
	return r.eng.ExtractPick(data, click)
}

// processSingleFile executes idempotent logic to create/fill Screenshot & Pick.
func (r *runner) processSingleFile(name string, profile models.Profile, ps *preloadState) {
	storePath := filepath.ToSlash(filepath.Join("public", filepath.Base(r.opts.Dir), name))
	filePath := filepath.Join(r.opts.Dir, name)

	if _, ok := ps.getPick(name); ok { // pick already exists
		r.logV("SKIP pick exists %s", name)
		return
	}
	shot, shotExists := ps.getShot(name)
	if shotExists && shot.PickID != nil { // already linked
		r.logV("SKIP screenshot already linked %s", name)
		return
	}

	// If screenshot doesn't exist, create it (DB write)
	if !shotExists {
		newShot := models.Screenshot{ProfileID: profile.ID, FileName: name, StorePath: storePath}
		if ct := mimeFromExt(name); ct != "" {
			newShot.ContentType = ct
		}
		if err := r.db.Create(&newShot).Error; err != nil {
			if isUniqueConstraintError(err) { // race: someone else created
				if err2 := r.db.Where("profile_id = ? AND file_name = ?", profile.ID, name).First(&newShot).Error; err2 != nil {
					log.Warn().Err(err2).Str("file", name).Msg("fetch after race failed")
					return
				}
			} else {
				log.Error().Err(err).Str("path", storePath).Msg("create screenshot")
				return
			}
		}
		ps.putShot(&newShot)
		shot = &newShot
		log.Info().Uint("id", newShot.ID).Str("file", name).Msg("new screenshot")
	}

	res, err := r.extractCentered(filePath)
	if err != nil {
		r.logV("extract fail %s: %v", name, err)
		shot.Failed = true
		shot.FailedReason = "no pick from center scan"
		_ = r.db.Save(shot).Error
		return
	}
	// persist the synthetic click for review
	shot.ClickX, shot.ClickY = parseCenter(res.ClickPosition)

	// Re-check if pick created concurrently
	if _, ok := ps.getPick(name); ok {
		return
	}

	// create pick + link
	pick := models.Pick{
		UserID:        profile.UserID,
		FileName:      name,
		GameText:      res.GameText,
		Team1:         res.Team1,
		Team2:         res.Team2,
		Odds:          res.Odds,
		MarketType:    string(res.MarketType),
		ClickPosition: res.ClickPosition,
		Method:        res.ExtractionMethod,
		ExtractedAt:   time.UnixMilli(res.Timestamp),
	}
	if err := r.db.Create(&pick).Error; err != nil {
		if isUniqueConstraintError(err) { // fetch existing
			var existing models.Pick
			if err2 := r.db.Where("user_id = ? AND file_name = ?", profile.UserID, name).First(&existing).Error; err2 == nil {
				ps.putPick(&existing)
				if shot.PickID == nil {
					shot.PickID = &existing.ID
					_ = r.db.Save(shot).Error
				}
			}
		} else {
			log.Error().Err(err).Str("file", name).Msg("create pick")
		}
		return
	}
	ps.putPick(&pick)
	if shot.PickID == nil {
		shot.PickID = &pick.ID
		_ = r.db.Save(shot).Error
	}
	log.Info().Str("game", pick.GameText).Str("odds", pick.Odds).Str("market", pick.MarketType).Str("file", name).Uint("screenshot", shot.ID).Msg("pick linked")
}

// parseCenter recovers the integer click point from its "(x, y)" rendering.
func parseCenter(s string) (int, int) {
	var x, y int
	_, _ = fmt.Sscanf(s, "(%d, %d)", &x, &y)
	return x, y
}

func mimeFromExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if m, ok := extMime[ext]; ok {
		return m
	}
	return ""
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
