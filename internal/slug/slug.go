// Package slug derives URL-safe identifiers from display names and resolves
// collisions with a numeric suffix.
package slug

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
)

// ErrEmpty is returned when a name reduces to nothing. Callers validate names
// before assigning slugs, so seeing this is a programming error upstream.
var ErrEmpty = errors.New("slug: name produces an empty slug")

var separators = regexp.MustCompile(`[^a-z0-9]+`)

// ExistsFunc reports whether slug is already used by an entity other than excludeID.
type ExistsFunc func(ctx context.Context, slug, excludeID string) (bool, error)

// Make lower-cases name, folds diacritics and collapses every run of
// non-alphanumeric characters into a single '-'.
func Make(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	s := separators.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(s, "-")
}

// Assign returns the base slug of name, or the first of base-1, base-2, ...
// that exists reports as unused.
func Assign(ctx context.Context, name, selfID string, exists ExistsFunc) (string, error) {
	base := Make(name)
	if base == "" {
		return "", ErrEmpty
	}

	candidate := base
	for n := 1; ; n++ {
		taken, err := exists(ctx, candidate, selfID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// NeedsUpdate reports whether the slug must be (re)computed: the entity is
// new, its name-bearing field changed, or it never had a slug.
func NeedsUpdate(isNew bool, oldName, newName, current string) bool {
	return isNew || current == "" || oldName != newName
}

// Resolve keeps current when no recompute is needed and otherwise assigns a
// fresh slug for newName.
func Resolve(ctx context.Context, isNew bool, oldName, newName, current, selfID string, exists ExistsFunc) (string, error) {
	if !NeedsUpdate(isNew, oldName, newName, current) {
		return current, nil
	}
	return Assign(ctx, newName, selfID, exists)
}

// FieldError reports ErrEmpty as a validation failure on field and passes
// other errors through.
func FieldError(field string, err error) error {
	if errors.Is(err, ErrEmpty) {
		return domain.Invalid(field, "must contain at least one letter or digit")
	}
	return err
}
