package findfile

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	starPattern    = "*"
	starDotPattern = "*.*"
)

// isWild reports whether pattern matches every name. Only these two spellings
// are recognized; anything else is filtered and needs the directory pass.
func isWild(pattern string) bool {
	return pattern == starPattern || pattern == starDotPattern
}

// matcher is a case-insensitive glob supporting '*' and '?'. Names are
// compared after NFC normalization and Unicode case folding so that a
// decomposed name from the filesystem matches a composed pattern.
type matcher struct {
	all     bool
	pattern []rune
	folder  cases.Caser
}

func newMatcher(pattern string) *matcher {
	if isWild(pattern) {
		return &matcher{all: true}
	}
	m := &matcher{folder: cases.Fold()}
	m.pattern = []rune(m.folder.String(norm.NFC.String(pattern)))
	return m
}

// match reports whether name matches. ASCII names, by far the common case,
// are folded on the fly without allocating.
func (m *matcher) match(name []byte) bool {
	if m.all {
		return true
	}
	if isASCII(name) {
		return globMatch(m.pattern, asciiRunes{name})
	}
	return globMatch(m.pattern, utf8Runes{m.folder.Bytes(norm.NFC.Bytes(name))})
}

func (m *matcher) matchString(name string) bool {
	if m.all {
		return true
	}
	return m.match([]byte(name))
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// runeSource yields already-folded runes of a name.
type runeSource interface {
	next(i int) (r rune, width int)
	len() int
}

type asciiRunes struct{ b []byte }

func (a asciiRunes) next(i int) (rune, int) {
	c := a.b[i]
	if 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	return rune(c), 1
}

func (a asciiRunes) len() int { return len(a.b) }

type utf8Runes struct{ b []byte }

func (u utf8Runes) next(i int) (rune, int) { return utf8.DecodeRune(u.b[i:]) }

func (u utf8Runes) len() int { return len(u.b) }

// globMatch is the usual single-star backtracking matcher: on mismatch it
// resumes after the most recent '*', consuming one more name rune.
func globMatch[S runeSource](pattern []rune, name S) bool {
	p, n := 0, 0
	star, starN := -1, 0
	for n < name.len() {
		r, w := name.next(n)
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				star, starN = p, n
				p++
				continue
			case '?':
				p++
				n += w
				continue
			default:
				if pattern[p] == r {
					p++
					n += w
					continue
				}
			}
		}
		if star < 0 {
			return false
		}
		_, sw := name.next(starN)
		starN += sw
		p, n = star+1, starN
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
