package segment

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePunctuation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Wait!!! What???", "Wait! What?"},
		{"a,,b;;c", "a,b;c"},
		{"dash -- and em——dash", "dash - and em—dash"},
		{`he said ""hi'' there`, `he said "hi' there`},
		{"mixed?! stays", "mixed?! stays"},
		{"clean text.", "clean text."},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePunctuation(tt.in), "input %q", tt.in)
	}
}

func TestNormalizePunctuationIdempotent(t *testing.T) {
	inputs := []string{"Wait!!! What???", "plain words, here.", "a--b——c''d"}
	for _, in := range inputs {
		once := NormalizePunctuation(in)
		assert.Equal(t, once, NormalizePunctuation(once))
	}
}

func TestParseRoundTrip(t *testing.T) {
	texts := []string{
		"The quick brown fox jumps over the lazy dog.",
		"Hello, world! This is a test... of sorts; really.",
		"NASA launched 42 rockets in 1969, a running total.",
		"One-word",
		"word",
	}
	p := NewParser()
	for _, text := range texts {
		doc := p.Parse(text)
		want := NormalizePunctuation(text)
		if diff := cmp.Diff(want, doc.Reconstruct()); diff != "" {
			t.Errorf("round trip mismatch for %q (-want +got):\n%s", text, diff)
		}
	}
}

func TestParseIndexContiguity(t *testing.T) {
	p := NewParser()
	doc := p.Parse("Considering the extraordinary circumstances, everybody listened carefully.")
	require.NotEmpty(t, doc.Words)

	assert.Equal(t, 0, doc.Words[0].StartIndex)
	for i, w := range doc.Words {
		assert.Equal(t, w.EndIndex-w.StartIndex+1, len(w.Syllables), "word %q", w.Word)
		if i > 0 {
			assert.Equal(t, doc.Words[i-1].EndIndex+1, w.StartIndex, "word %q", w.Word)
		}
	}
	assert.Equal(t, len(doc.Syllables)-1, doc.Words[len(doc.Words)-1].EndIndex)

	var joined []string
	for _, w := range doc.Words {
		joined = append(joined, w.Syllables...)
	}
	assert.Equal(t, doc.Syllables, joined)
}

func TestParseClassification(t *testing.T) {
	p := NewParser()

	doc := p.Parse("42")
	assert.Equal(t, []string{"4", "2"}, doc.Syllables)

	doc = p.Parse("NASA")
	assert.Equal(t, []string{"N", "A", "S", "A"}, doc.Syllables)

	doc = p.Parse("running")
	assert.Greater(t, len(doc.Syllables), 1)
	assert.Equal(t, "running", strings.Join(doc.Syllables, ""))
	for _, s := range doc.Syllables {
		assert.Equal(t, strings.ToLower(s), s)
	}
}

func TestParseRecasePreservesOriginalCase(t *testing.T) {
	p := NewParser()
	doc := p.Parse("Reading McDonald UPPERlower")
	require.Len(t, doc.Words, 3)
	assert.Equal(t, "Reading", strings.Join(doc.Words[0].Syllables, ""))
	assert.Equal(t, "McDonald", strings.Join(doc.Words[1].Syllables, ""))
	assert.Equal(t, "UPPERlower", strings.Join(doc.Words[2].Syllables, ""))
}

func TestParseEmptyInput(t *testing.T) {
	p := NewParser()
	doc := p.Parse("")
	assert.Empty(t, doc.Syllables)
	assert.Empty(t, doc.Words)

	doc = p.Parse("   ...   ")
	assert.Empty(t, doc.Syllables)
}

func TestParseFollowingRuns(t *testing.T) {
	p := NewParser()
	doc := p.Parse("one, two... three")
	require.Len(t, doc.Words, 3)
	assert.Equal(t, ", ", doc.Words[0].Following)
	assert.Equal(t, "... ", doc.Words[1].Following)
	assert.Equal(t, "", doc.Words[2].Following)
}

// oversplitter returns more characters than the word has, exercising the
// truncation path of the re-casing step.
type oversplitter struct{}

func (oversplitter) Syllables(word string) ([]string, error) {
	return []string{word, "excess", "excess"}, nil
}

func TestParseRecaseTruncatesOversizedCandidates(t *testing.T) {
	p := NewParser(WithHyphenator(oversplitter{}))
	doc := p.Parse("Word")
	assert.Equal(t, "Word", strings.Join(doc.Syllables, ""))
}

// undersplitter drops characters; the remainder must rejoin the last
// syllable so the word still round-trips.
type undersplitter struct{}

func (undersplitter) Syllables(word string) ([]string, error) {
	if len(word) < 3 {
		return []string{word}, nil
	}
	return []string{word[:1], word[1:2]}, nil
}

func TestParseRecaseAppendsShortfall(t *testing.T) {
	p := NewParser(WithHyphenator(undersplitter{}))
	doc := p.Parse("Spelling")
	assert.Equal(t, "Spelling", strings.Join(doc.Syllables, ""))
}

// failing always errors, forcing the rule fallback.
type failing struct{}

func (failing) Syllables(string) ([]string, error) {
	return nil, errors.New("dictionary unavailable")
}

func TestParseFallsBackOnHyphenatorError(t *testing.T) {
	withFallback := NewParser(WithHyphenator(failing{}))
	ruleOnly := NewParser()

	text := "Considering everything carefully"
	if diff := cmp.Diff(ruleOnly.Parse(text), withFallback.Parse(text)); diff != "" {
		t.Errorf("fallback parse differs from rule parse (-want +got):\n%s", diff)
	}
}
