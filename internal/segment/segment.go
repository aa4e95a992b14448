// Package segment turns prose into an ordered sequence of syllable units
// plus a word map that binds every syllable run back to its source word
// and trailing punctuation. Joining each word's syllables followed by its
// trailing run reconstructs the punctuation-normalized input exactly.
package segment

import (
	"regexp"
	"strings"

	"syllaread/internal/segment/hyphen"
)

// WordEntry binds a run of syllable units to its source word.
// EndIndex-StartIndex+1 always equals len(Syllables), and consecutive
// entries cover the document's syllable sequence contiguously.
type WordEntry struct {
	Word       string   `json:"word"`
	Following  string   `json:"following"`
	StartIndex int      `json:"start_index"`
	EndIndex   int      `json:"end_index"`
	Syllables  []string `json:"syllables"`
}

// Document is the parsed form of one piece of content. It is rebuilt from
// scratch on every content load or swap, never mutated.
type Document struct {
	Syllables []string    `json:"syllables"`
	Words     []WordEntry `json:"words"`
}

var tokenRe = regexp.MustCompile(`(\w+)(\W*)`)

// Parser segments text using a hyphenation capability with a rule-based
// fallback for words the capability cannot handle.
type Parser struct {
	hyph     hyphen.Hyphenator
	fallback hyphen.Rule
}

// Option configures a Parser.
type Option func(*Parser)

// WithHyphenator sets the primary hyphenation capability. Without it the
// rule-based fallback handles every word.
func WithHyphenator(h hyphen.Hyphenator) Option {
	return func(p *Parser) { p.hyph = h }
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse segments text into a Document. It is deterministic, synchronous
// and never fails: empty input yields an empty document, which callers
// must treat as "no content".
func (p *Parser) Parse(text string) *Document {
	doc := &Document{}
	normalized := NormalizePunctuation(text)

	for _, m := range tokenRe.FindAllStringSubmatch(normalized, -1) {
		word, following := m[1], m[2]
		if word == "" {
			continue
		}

		syls := p.syllabify(word)

		entry := WordEntry{
			Word:       word,
			Following:  following,
			StartIndex: len(doc.Syllables),
			EndIndex:   len(doc.Syllables) + len(syls) - 1,
			Syllables:  syls,
		}
		doc.Syllables = append(doc.Syllables, syls...)
		doc.Words = append(doc.Words, entry)
	}

	return doc
}

// syllabify classifies the word and produces its syllable units: digits
// split per digit, acronyms per letter, everything else through the
// hyphenation capability with re-cased output.
func (p *Parser) syllabify(word string) []string {
	if isAllDigits(word) || isAcronym(word) {
		units := make([]string, 0, len(word))
		for _, c := range word {
			units = append(units, string(c))
		}
		return units
	}

	lower := strings.ToLower(word)
	cands, err := p.candidates(lower)
	if err != nil || len(cands) == 0 {
		cands, _ = p.fallback.Syllables(lower)
	}
	if len(cands) == 0 {
		cands = []string{lower}
	}

	return recase(word, cands)
}

func (p *Parser) candidates(lower string) ([]string, error) {
	if p.hyph == nil {
		return p.fallback.Syllables(lower)
	}
	return p.hyph.Syllables(lower)
}

// recase rebuilds the syllables from the original word's characters,
// consuming len(candidate) characters per candidate in order, so the
// concatenation always equals the word exactly. Candidates past the end
// of the word are dropped; leftover characters join the last syllable.
func recase(word string, cands []string) []string {
	out := make([]string, 0, len(cands))
	pos := 0
	for _, cand := range cands {
		if pos >= len(word) {
			break
		}
		end := pos + len(cand)
		if end > len(word) {
			end = len(word)
		}
		out = append(out, word[pos:end])
		pos = end
	}
	if pos < len(word) {
		if len(out) == 0 {
			return []string{word}
		}
		out[len(out)-1] += word[pos:]
	}
	return out
}

// NormalizePunctuation collapses runs of two or more identical characters
// from the sets {,;!?}, {—,-} and {'"} into a single occurrence. Applied
// left to right in one pass; idempotent.
func NormalizePunctuation(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var prev rune = -1
	for _, r := range text {
		if r == prev && isCollapsible(r) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func isCollapsible(r rune) bool {
	switch r {
	case ',', ';', '!', '?', '—', '-', '\'', '"':
		return true
	}
	return false
}

func isAllDigits(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < '0' || word[i] > '9' {
			return false
		}
	}
	return len(word) > 0
}

// isAcronym reports whether word looks like an initialism: two or more
// characters, all uppercase letters.
func isAcronym(word string) bool {
	if len(word) < 2 {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'A' || word[i] > 'Z' {
			return false
		}
	}
	return true
}

// Reconstruct joins every word's syllables and trailing run in order,
// yielding the punctuation-normalized source text.
func (d *Document) Reconstruct() string {
	var b strings.Builder
	for _, w := range d.Words {
		for _, s := range w.Syllables {
			b.WriteString(s)
		}
		b.WriteString(w.Following)
	}
	return b.String()
}
