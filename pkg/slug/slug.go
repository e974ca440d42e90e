package slug

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyTitle is returned when a title contains no characters that
	// survive normalization and the generator is not configured to allow it.
	ErrEmptyTitle = errors.New("title produces an empty slug")

	// ErrSpaceExhausted is returned when every candidate up to the retry
	// limit is already taken.
	ErrSpaceExhausted = errors.New("slug candidate space exhausted")
)

// DefaultMaxAttempts bounds how many candidates Unique probes before
// giving up.
const DefaultMaxAttempts = 1000

// Probe reports whether a candidate slug is already taken. An error means
// the check itself failed and generation must stop; it is never treated as
// "available".
type Probe func(ctx context.Context, candidate string) (bool, error)

// Generator derives URL-safe, collision-free slugs. The zero value is
// ready to use.
type Generator struct {
	// MaxAttempts caps the number of candidates probed per call.
	// Zero means DefaultMaxAttempts.
	MaxAttempts int

	// AllowEmpty lets titles with no sluggable characters through with an
	// empty base, so candidates degrade to "-1", "-2" and so on instead of
	// failing.
	AllowEmpty bool
}

// Make lowercases the title and collapses every run of characters outside
// [a-z0-9] into a single hyphen, with no leading or trailing hyphen. It is
// idempotent: Make(Make(s)) == Make(s).
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pending := false
	for _, r := range strings.ToLower(title) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte('-')
		}
		pending = false
		b.WriteRune(r)
	}

	return b.String()
}

// Unique returns the first candidate slug the probe reports as free,
// starting from Make(title) and then appending "-1", "-2", ... until the
// attempt limit is hit.
func (g Generator) Unique(ctx context.Context, title string, taken Probe) (string, error) {
	base := Make(title)
	if base == "" && !g.AllowEmpty {
		return "", ErrEmptyTitle
	}

	maxAttempts := g.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}

		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", ErrSpaceExhausted
}
