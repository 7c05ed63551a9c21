package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"garden-guide/internal/schedule"
)

// GuideArchive provides a file-based archive of computed garden guides,
// one file per user and week.
type GuideArchive struct {
	basePath string
}

// NewGuideArchive creates a new GuideArchive and ensures the base directory exists.
func NewGuideArchive(basePath string) (*GuideArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &GuideArchive{basePath: basePath}, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// sanitizeUserID makes the user id safe for filenames.
func sanitizeUserID(userID string) string {
	return unsafeChars.ReplaceAllString(userID, "-")
}

func (a *GuideArchive) path(userID string, week int) string {
	filename := fmt.Sprintf("%s_week-%02d.json", sanitizeUserID(userID), week)
	return filepath.Join(a.basePath, filename)
}

// Save writes the guide for userID, replacing any earlier copy of the same week.
func (a *GuideArchive) Save(userID string, guide *schedule.Guide) error {
	data, err := json.MarshalIndent(guide, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal guide: %w", err)
	}

	if err := os.WriteFile(a.path(userID, guide.Week.Ordinal), data, 0644); err != nil {
		return fmt.Errorf("failed to write guide file: %w", err)
	}
	return nil
}

// Load reads the archived guide for userID and week.
func (a *GuideArchive) Load(userID string, week int) (*schedule.Guide, error) {
	data, err := os.ReadFile(a.path(userID, week))
	if err != nil {
		return nil, fmt.Errorf("failed to read guide file: %w", err)
	}

	var guide schedule.Guide
	if err := json.Unmarshal(data, &guide); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guide: %w", err)
	}
	return &guide, nil
}

// Exists checks if a guide for userID and week has been archived.
func (a *GuideArchive) Exists(userID string, week int) bool {
	_, err := os.Stat(a.path(userID, week))
	return !os.IsNotExist(err)
}

// List returns the archived week ordinals for userID in ascending order.
func (a *GuideArchive) List(userID string) ([]int, error) {
	pattern := filepath.Join(a.basePath, sanitizeUserID(userID)+"_week-*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob guide files: %w", err)
	}

	weeks := make([]int, 0, len(matches))
	for _, m := range matches {
		var week int
		name := filepath.Base(m)
		if _, err := fmt.Sscanf(name[len(sanitizeUserID(userID))+len("_week-"):], "%02d.json", &week); err != nil {
			continue
		}
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	return weeks, nil
}
