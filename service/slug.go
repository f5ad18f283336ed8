package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"menuqr/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// fallbackSlug is used when a name has no transliterable characters
const fallbackSlug = "restaurant"

// Slugify turns a display name into a lowercase ASCII hyphen separated token
func Slugify(name string) string {
	s := slug.Make(name)
	s = strings.ReplaceAll(s, "_", "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = truncateSlug(s, models.SlugMaxLength)
	if s == "" {
		return fallbackSlug
	}
	return s
}

func truncateSlug(s string, max int) string {
	if len(s) > max {
		s = s[:max]
	}
	return strings.Trim(s, "-")
}

// withSuffix appends -n, shortening the base so the result still fits the column
func withSuffix(base string, n int) string {
	if n == 0 {
		return base
	}
	suffix := "-" + strconv.Itoa(n)
	return truncateSlug(base, models.SlugMaxLength-len(suffix)) + suffix
}

// suffixPrefixLen length of the base kept by withSuffix for any realistic suffix
const suffixPrefixLen = 30

// EnsureUniqueSlug slugifies proposedName and appends -1, -2, ... until no other
// restaurant uses it. excludeID skips the restaurant being updated so re-saving keeps
// its own slug. The result is only a candidate: the unique index decides at commit.
func EnsureUniqueSlug(ctx context.Context, db *gorm.DB, proposedName string, excludeID uint) (string, error) {
	slug, _, err := nextFreeSlug(ctx, db, Slugify(proposedName), excludeID, 0)
	return slug, err
}

// nextFreeSlug returns the first candidate of base with suffix >= from that no other
// restaurant uses, and its suffix. Every candidate of base is loaded in one query.
func nextFreeSlug(ctx context.Context, db *gorm.DB, base string, excludeID uint, from int) (string, int, error) {
	taken, err := takenSuffixes(ctx, db, base, excludeID)
	if err != nil {
		return "", 0, err
	}
	n := from
	for taken[n] {
		n++
	}
	return withSuffix(base, n), n, nil
}

// takenSuffixes suffixes of base in use; 0 is base itself
func takenSuffixes(ctx context.Context, db *gorm.DB, base string, excludeID uint) (map[int]bool, error) {
	prefix := base
	if len(prefix) > suffixPrefixLen {
		prefix = prefix[:suffixPrefixLen]
	}
	q := db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("slug = ? OR slug LIKE ?", base, prefix+"%")
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var slugs []string
	if err := q.Pluck("slug", &slugs).Error; err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}

	taken := make(map[int]bool, len(slugs))
	for _, s := range slugs {
		if s == base {
			taken[0] = true
			continue
		}
		i := strings.LastIndexByte(s, '-')
		if i < 0 {
			continue
		}
		n, err := strconv.Atoi(s[i+1:])
		if err != nil || n <= 0 {
			continue
		}
		if withSuffix(base, n) == s {
			taken[n] = true
		}
	}
	return taken, nil
}
