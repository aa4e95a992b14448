// Package terminal renders the syllable reveal on standard output.
package terminal

import (
	"fmt"

	"syllaread/internal/cli/scheme/colours"
	"syllaread/internal/segment"
)

// Renderer prints documents and revealed syllables with the CLI colour
// scheme. It satisfies reader.Renderer.
type Renderer struct {
	total int
}

func New() *Renderer {
	return &Renderer{}
}

// ShowDocument announces freshly installed content.
func (r *Renderer) ShowDocument(title string, doc *segment.Document) {
	r.total = len(doc.Syllables)
	fmt.Println()
	colours.Title.Printf("%s\n", title)
	colours.Info.Printf("%d words, %d syllables\n", len(doc.Words), r.total)
	fmt.Println()
}

// ShowSyllable prints one revealed syllable in place.
func (r *Renderer) ShowSyllable(index int, syllable string) {
	colours.Syllable.Printf("%s ", syllable)
	if r.total > 0 && (index+1)%20 == 0 {
		fmt.Println()
	}
}

// ShowComplete marks the end of the reveal sequence.
func (r *Renderer) ShowComplete() {
	fmt.Println()
	colours.Success.Println("Done.")
}
