// Package hyphen provides the pluggable hyphenation capability used by the
// segmentation engine. Two variants exist: a dictionary-backed hyphenator
// driven by Knuth-Liang pattern files, and a rule-based vowel-grouping
// fallback that needs no data files.
package hyphen

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/speedata/hyphenation"
)

// Hyphenator splits a lowercased word into syllable candidates.
type Hyphenator interface {
	Syllables(word string) ([]string, error)
}

type Kind string

const (
	KindRule Kind = "rule"
	KindDict Kind = "dict"
	KindAuto Kind = "auto" // dict when a pattern file is configured, else rule
)

func (k Kind) String() string {
	return string(k)
}

// New creates a hyphenator of the requested kind. patternPath names a
// Knuth-Liang pattern file and is required for KindDict. KindAuto degrades
// to the rule variant when no usable pattern file is configured.
func New(kind Kind, patternPath string) (Hyphenator, error) {
	switch kind {
	case KindRule:
		return Rule{}, nil

	case KindDict:
		return newDict(patternPath)

	case KindAuto:
		if patternPath == "" {
			return Rule{}, nil
		}
		d, err := newDict(patternPath)
		if err != nil {
			logrus.WithError(err).WithField("patterns", patternPath).
				Warn("Hyphenation patterns unavailable, using rule fallback")
			return Rule{}, nil
		}
		return d, nil

	default:
		return nil, fmt.Errorf("unsupported hyphenator kind: %s", kind)
	}
}

// Dict is the dictionary-backed variant.
type Dict struct {
	lang *hyphenation.Lang
}

func newDict(patternPath string) (*Dict, error) {
	f, err := os.Open(patternPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer f.Close()

	lang, err := hyphenation.New(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	return &Dict{lang: lang}, nil
}

// Syllables splits word at the pattern-determined break points.
func (d *Dict) Syllables(word string) (syls []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hyphenation failed for %q: %v", word, r)
		}
	}()

	breaks := d.lang.Hyphenate(word)
	if len(breaks) == 0 {
		return []string{word}, nil
	}

	runes := []rune(word)
	prev := 0
	for _, b := range breaks {
		if b <= prev || b >= len(runes) {
			continue
		}
		syls = append(syls, string(runes[prev:b]))
		prev = b
	}
	syls = append(syls, string(runes[prev:]))
	return syls, nil
}

// Rule is the fallback variant: it groups letters around vowel runs, with
// y counted as a vowel. Each syllable is zero or more consonants, one or
// more vowels, then a single trailing consonant only when that consonant
// is not itself followed by another consonant. A word-final consonant run
// with no vowel left attaches to the preceding syllable.
type Rule struct{}

func (Rule) Syllables(word string) ([]string, error) {
	n := len(word)
	if n == 0 {
		return nil, nil
	}

	var syls []string
	i := 0
	for i < n {
		start := i
		for i < n && !isVowel(word[i]) {
			i++
		}
		if i == n {
			// no vowel in the remainder
			if len(syls) == 0 {
				return []string{word}, nil
			}
			syls[len(syls)-1] += word[start:]
			break
		}
		for i < n && isVowel(word[i]) {
			i++
		}
		if i < n && !isVowel(word[i]) && (i+1 == n || isVowel(word[i+1])) {
			i++
		}
		syls = append(syls, word[start:i])
	}
	return syls, nil
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
