package version

import (
	"sort"
	"strings"
)

// token is one (number, suffix) component of a version string.
type token struct {
	number int64
	suffix string
}

// isSeparator reports whether c splits version components.
func isSeparator(c byte) bool {
	return c == '.' || c == '-' || c == '_'
}

// tokenize splits a version into (number, suffix) pairs on '.', '-' and '_'.
// Leading digits form the number; everything up to the next separator is
// the suffix. "0.30.0b3" becomes (0,""), (30,""), (0,"b3").
func tokenize(v string) []token {
	var tokens []token
	pos := 0
	for pos < len(v) {
		var tok token
		for pos < len(v) && v[pos] >= '0' && v[pos] <= '9' {
			// Saturate instead of overflowing on absurdly long components
			if tok.number < (1<<62)/10 {
				tok.number = tok.number*10 + int64(v[pos]-'0')
			}
			pos++
		}
		start := pos
		for pos < len(v) && !isSeparator(v[pos]) {
			pos++
		}
		tok.suffix = v[start:pos]
		tokens = append(tokens, tok)
		if pos < len(v) {
			pos++ // skip separator
		}
	}
	return tokens
}

// isZero reports whether a trailing token adds nothing to a version.
func (t token) isZero() bool {
	return t.number == 0 && t.suffix == ""
}

// Compare returns -1, 0 or 1 as a is less than, equal to or greater than b.
//
// Numeric parts compare as integers. On a tie, suffixes compare lexically,
// except that an empty suffix beats any non-empty one ("1.2" > "1.2b").
// When one version runs out of components, the versions are equal if the
// other's remaining components are all zero ("1.2.0" == "1.2"); otherwise
// the longer one is greater.
func Compare(a, b string) int {
	ta, tb := tokenize(a), tokenize(b)

	n := len(ta)
	if len(tb) < n {
		n = len(tb)
	}

	for i := 0; i < n; i++ {
		x, y := ta[i], tb[i]
		switch {
		case x.number < y.number:
			return -1
		case x.number > y.number:
			return 1
		}

		switch {
		case x.suffix == y.suffix:
			continue
		case x.suffix == "":
			return 1
		case y.suffix == "":
			return -1
		}
		return strings.Compare(x.suffix, y.suffix)
	}

	for _, t := range ta[n:] {
		if !t.isZero() {
			return 1
		}
	}
	for _, t := range tb[n:] {
		if !t.isZero() {
			return -1
		}
	}
	return 0
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort sorts versions in ascending order. Equal versions keep their
// relative order.
func Sort(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}

// Major returns the substring before the first '.', or v itself.
func Major(v string) string {
	if i := strings.IndexByte(v, '.'); i >= 0 {
		return v[:i]
	}
	return v
}
