package form

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	slugSuffixLength = 6
	slugSuffixChars  = "0123456789abcdefghijklmnopqrstuvwxyz"
	slugMaxAttempts  = 5
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases the title and collapses non-alphanumeric runs to single
// hyphens.
func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 48 {
		slug = strings.Trim(slug[:48], "-")
	}
	if slug == "" {
		slug = "form"
	}
	return slug
}

func randomSlugSuffix() (string, error) {
	suffix := make([]byte, slugSuffixLength)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(slugSuffixChars))))
		if err != nil {
			return "", err
		}
		suffix[i] = slugSuffixChars[n.Int64()]
	}
	return string(suffix), nil
}

// generateSlug builds a unique shareable slug from the title, retrying with a
// fresh random suffix on collision.
func generateSlug(ctx context.Context, repo Repository, title string) (string, error) {
	base := slugify(title)

	for attempt := 0; attempt < slugMaxAttempts; attempt++ {
		suffix, err := randomSlugSuffix()
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s-%s", base, suffix)

		exists, err := repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not generate unique slug for %q", base)
}
