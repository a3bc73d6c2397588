package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/varalys/asmscan/internal/audit"
	"github.com/varalys/asmscan/internal/logging"
	"github.com/varalys/asmscan/internal/scanner"
	"github.com/varalys/asmscan/internal/types"
)

// Entry is the last engine result for one assembly.
type Entry struct {
	Key       string          `json:"key"`
	Findings  []types.Finding `json:"findings"`
	Timestamp time.Time       `json:"timestamp"`
}

type DB struct {
	// Absolute assembly path -> last result
	Entries map[string]Entry `json:"entries"`
}

func defaultPath(dir string) string {
	// Prefer storing cache under .git to avoid accidental commits
	gitDir := filepath.Join(dir, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "asmscan_cache.json")
	}
	return filepath.Join(dir, ".asmscan_cache.json")
}

func Load(dir string) (DB, error) {
	var db DB
	f, err := os.ReadFile(defaultPath(dir))
	if err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]Entry{}
	}
	return db, nil
}

func Save(dir string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(defaultPath(dir), b, 0644)
}

// Key identifies one engine run: the assembly contents, the engine version
// and every option that can change its output.
func Key(digest, engineVersion string, cfg scanner.Config) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s\x00%s\x00%t\x00%s", digest, engineVersion, cfg.DeveloperMode, cfg.RulesPath)
	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "\x00%s=%s", k, cfg.Options[k])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Scanner replays the previous result for an unchanged assembly instead of
// running the engine again. Cache problems are logged and never fail a scan.
type Scanner struct {
	inner scanner.Scanner
	dir   string
}

// Wrap returns a caching scanner storing its state in dir.
func Wrap(inner scanner.Scanner, dir string) *Scanner {
	return &Scanner{inner: inner, dir: dir}
}

func (s *Scanner) Version() (string, error) { return s.inner.Version() }

func (s *Scanner) Scan(assemblyPath string, cfg scanner.Config) ([]types.Finding, error) {
	key, abs, ok := s.key(assemblyPath, cfg)
	if !ok {
		return s.inner.Scan(assemblyPath, cfg)
	}

	db, err := Load(s.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Logger.Warnw("ignoring unreadable scan cache", "error", err)
	}
	if e, hit := db.Entries[abs]; hit && e.Key == key {
		logging.Logger.Debugw("scan cache hit", "assembly", abs, "findings", len(e.Findings))
		return e.Findings, nil
	}

	findings, err := s.inner.Scan(assemblyPath, cfg)
	if err != nil {
		return nil, err
	}
	db.Entries[abs] = Entry{Key: key, Findings: findings, Timestamp: time.Now()}
	if err := Save(s.dir, db); err != nil {
		logging.Logger.Warnw("could not save scan cache", "error", err)
	}
	return findings, nil
}

func (s *Scanner) key(assemblyPath string, cfg scanner.Config) (key, abs string, ok bool) {
	abs, err := filepath.Abs(assemblyPath)
	if err != nil {
		return "", "", false
	}
	digest, err := audit.DigestFile(assemblyPath)
	if err != nil {
		logging.Logger.Debugw("scan cache disabled", "assembly", abs, "error", err)
		return "", "", false
	}
	version, err := s.inner.Version()
	if err != nil || version == "" || version == "unknown" {
		// results from an unidentified engine are never reused
		return "", "", false
	}
	return Key(digest, version, cfg), abs, true
}
