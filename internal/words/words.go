package words

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed words.txt
var embedded string

// ErrEmptyCorpus is returned when a word list contains no usable word.
var ErrEmptyCorpus = errors.New("word corpus is empty")

// Corpus is a fixed list of words.
type Corpus struct {
	words []string
}

// New creates a Corpus from words. Words are trimmed and lowercased; blank
// entries are dropped.
func New(words []string) (*Corpus, error) {
	lower := cases.Lower(language.English)

	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, lower.String(w))
	}
	if len(out) == 0 {
		return nil, ErrEmptyCorpus
	}
	return &Corpus{words: out}, nil
}

// Load reads a Corpus with one word per line. Lines starting with "#" are
// comments.
func Load(r io.Reader) (*Corpus, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return New(lines)
}

var loadDefault = sync.OnceValues(func() (*Corpus, error) {
	return Load(strings.NewReader(embedded))
})

// Default returns the embedded corpus.
func Default() (*Corpus, error) {
	return loadDefault()
}

// Len returns the number of words.
func (c *Corpus) Len() int {
	return len(c.words)
}

// Words returns a copy of the word list.
func (c *Corpus) Words() []string {
	return append([]string(nil), c.words...)
}

// Term returns a word chosen uniformly at random.
func (c *Corpus) Term() string {
	return c.words[rand.IntN(len(c.words))]
}
