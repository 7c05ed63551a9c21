package variety

import (
	"errors"
	"fmt"
	"strings"
)

// Lifecycle classifies how long a variety lives and produces.
type Lifecycle string

const (
	Annual              Lifecycle = "annual"
	Biennial            Lifecycle = "biennial"
	Perennial           Lifecycle = "perennial"
	ShortLivedPerennial Lifecycle = "short_lived_perennial"
)

// ErrUnknownLifecycle is returned when a lifecycle name is not recognised.
var ErrUnknownLifecycle = errors.New("unknown lifecycle")

// Lifecycles lists every lifecycle category.
var Lifecycles = []Lifecycle{Annual, Biennial, Perennial, ShortLivedPerennial}

// ParseLifecycle parses a lifecycle name. Case, surrounding space, and
// space or hyphen separators are tolerated ("Short-lived Perennial").
// Unknown names are an error.
func ParseLifecycle(s string) (Lifecycle, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, lc := range Lifecycles {
		if norm == string(lc) {
			return lc, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLifecycle, s)
}

// LifecycleInfo is the reference row for a lifecycle.
type LifecycleInfo struct {
	Lifecycle         Lifecycle `json:"lifecycle"`
	ProductivityYears int       `json:"productivity_years"`
}
