// Package conllu reads annotated corpora in the CoNLL-U layout: one token per
// line with tab separated columns, blank lines between sentences and lines
// starting with '#' as comments.
package conllu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	sent "github.com/revelaction/tageval/sentence"
)

const (
	fieldSeparator = "\t"
	commentPrefix  = "#"

	// NumFields is the minimum number of columns of a token line.
	NumFields = 10

	colForm   = 1
	colLemma  = 2
	colUpos   = 3
	colHead   = 6
	colDeprel = 7

	maxLineSize = 1024 * 1024
)

// ErrNotFound is returned by Load when the corpus file does not exist.
var ErrNotFound = fmt.Errorf("corpus not found: %w", fs.ErrNotExist)

// Load reads the corpus file at path.
func Load(path string) (sent.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("IO error: %w", err)
	}
	defer f.Close()

	corpus, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return corpus, nil
}

// Read parses a corpus from r. Token lines with fewer than NumFields
// columns are dropped. Only I/O errors are returned.
func Read(r io.Reader) (sent.Corpus, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var corpus sent.Corpus
	var current sent.Sentence

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				corpus = append(corpus, current)
				current = nil
			}
			continue
		}

		if strings.HasPrefix(line, commentPrefix) {
			continue
		}

		token, ok := ParseToken(line)
		if !ok {
			continue
		}
		current = append(current, token)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// file did not end with a blank line
	if len(current) > 0 {
		corpus = append(corpus, current)
	}

	return corpus, nil
}

// ParseToken builds a Token from a tab separated line. It reports false when
// the line has fewer than NumFields columns.
func ParseToken(line string) (sent.Token, bool) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) < NumFields {
		return sent.Token{}, false
	}

	return sent.Token{
		Form:   fields[colForm],
		Lemma:  fields[colLemma],
		Upos:   fields[colUpos],
		Head:   fields[colHead],
		Deprel: fields[colDeprel],
	}, true
}
