// Package lexicon serves the local word lists behind the synonym trainers.
package lexicon

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

//go:embed data/*.txt
var data embed.FS

// ErrEmpty is returned when a source holds no entries.
var ErrEmpty = errors.New("lexicon: no entries")

// Lexicon is an in-memory synset database.
type Lexicon struct {
	lemmas  []string
	synsets map[string][][]string
}

// Lemmas returns every distinct lemma, sorted.
func (l *Lexicon) Lemmas() []string { return l.lemmas }

// Synsets returns the synsets containing word.
func (l *Lexicon) Synsets(word string) [][]string { return l.synsets[word] }

// Words is a flat headword list.
type Words []string

// Words returns the list.
func (w Words) Words() []string { return w }

// LoadEnglish reads synsets from path, or the embedded list when path is empty.
func LoadEnglish(path string) (*Lexicon, error) {
	r, closeFn, err := open(path, "data/en.txt")
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return ParseSynsets(r)
}

// LoadGerman reads headwords from path, or the embedded list when path is empty.
func LoadGerman(path string) (Words, error) {
	r, closeFn, err := open(path, "data/de.txt")
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return ParseWords(r)
}

func open(path, embedded string) (io.Reader, func(), error) {
	if path == "" {
		f, err := data.Open(embedded)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open lexicon %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// ParseSynsets reads one comma-separated synset per line. Blank lines and
// lines starting with # are skipped.
func ParseSynsets(r io.Reader) (*Lexicon, error) {
	lex := &Lexicon{synsets: make(map[string][][]string)}
	seen := make(map[string]struct{})

	err := scanLines(r, func(line string) {
		var set []string
		for _, lemma := range strings.Split(line, ",") {
			if lemma = strings.TrimSpace(lemma); lemma != "" {
				set = append(set, lemma)
			}
		}
		if len(set) == 0 {
			return
		}
		for _, lemma := range set {
			lex.synsets[lemma] = append(lex.synsets[lemma], set)
			if _, ok := seen[lemma]; !ok {
				seen[lemma] = struct{}{}
				lex.lemmas = append(lex.lemmas, lemma)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if len(lex.lemmas) == 0 {
		return nil, ErrEmpty
	}
	sort.Strings(lex.lemmas)
	return lex, nil
}

// ParseWords reads one headword per line.
func ParseWords(r io.Reader) (Words, error) {
	var out Words
	seen := make(map[string]struct{})
	err := scanLines(r, func(line string) {
		if _, ok := seen[line]; ok {
			return
		}
		seen[line] = struct{}{}
		out = append(out, line)
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

func scanLines(r io.Reader, fn func(line string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(line)
	}
	return sc.Err()
}
