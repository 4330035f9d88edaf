package bank

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rgfreitas/certtrainer/internal/model"
)

// SeedFileName maps a track code to its seed file, e.g. AZ-900 ->
// questions.az900.json.
func SeedFileName(track string) string {
	return "questions." + strings.ToLower(strings.ReplaceAll(track, "-", "")) + ".json"
}

// LoadSeeds reads one seed file per track from dir, sanitizes the contents
// and places them in the store under the given language. A missing or
// malformed file logs a warning and leaves that track's bank empty; seed
// loading is never fatal.
func LoadSeeds(dir string, tracks []string, language string, store *Store) {
	loaded := 0
	for _, track := range tracks {
		path := filepath.Join(dir, SeedFileName(track))
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("seed file not readable", "track", track, "path", path, "error", err)
			continue
		}

		var raw []model.Question
		if err := json.Unmarshal(data, &raw); err != nil {
			slog.Warn("seed file malformed", "track", track, "path", path, "error", err)
			continue
		}

		questions := Sanitize(track, raw)
		store.Set(track, language, questions)
		slog.Info("loaded seed questions", "track", track, "path", path, "count", len(questions))
		loaded++
	}
	if loaded == 0 {
		slog.Error("no seed files loaded", "tracks", strings.Join(tracks, ","), "dir", dir)
	}
}
