// Package slug derives the public identifier of a store from its name.
package slug

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	nonWord     = regexp.MustCompile(`[^\w-]+`)
	hyphenRuns  = regexp.MustCompile(`-{2,}`)
	suffixShape = regexp.MustCompile(`^[1-9][0-9]{3}$`)
)

// Generate converts a shop name into a URL-safe slug and appends suffix.
//
// The name is lower-cased and trimmed, whitespace runs become a single
// hyphen, everything outside [A-Za-z0-9_-] is dropped and hyphen runs are
// collapsed. Degenerate names are not rejected here.
//
//	Generate("Fresh Bakes!!", "1234") // "fresh-bakes-1234"
//	Generate("  a   b  ", "")         // "a-b"
func Generate(text, suffix string) string {
	base := strings.ToLower(text)
	base = strings.Join(strings.Fields(base), "-")
	base = nonWord.ReplaceAllString(base, "")
	base = hyphenRuns.ReplaceAllString(base, "-")

	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}

// IsSuffix reports whether s has the shape of a suffix produced by a Source.
func IsSuffix(s string) bool {
	return suffixShape.MatchString(s)
}

// Source draws slug suffixes, uniformly over 1000-9999. It is safe for
// concurrent use.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a Source seeded from the clock.
func NewSource() *Source {
	return NewSeededSource(time.Now().UnixNano())
}

// NewSeededSource returns a deterministic Source, mainly for tests.
func NewSeededSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Suffix returns a new 4-digit suffix.
func (s *Source) Suffix() string {
	s.mu.Lock()
	n := 1000 + s.rng.Intn(9000)
	s.mu.Unlock()
	return strconv.Itoa(n)
}
