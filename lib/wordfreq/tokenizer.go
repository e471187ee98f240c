package wordfreq

import (
	"bufio"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/benz9527/xrank/lib/infra"
)

const maxTokenSize = 1 << 20

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}

// ScanWords is a bufio.SplitFunc that returns the runs of letters,
// digits and apostrophes. Everything else separates words. A rune cut
// at the end of the buffer is kept for the next read.
func ScanWords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		if !atEOF && !utf8.FullRune(data[start:]) {
			return start, nil, nil
		}
		r, width := utf8.DecodeRune(data[start:])
		if isWordRune(r) {
			break
		}
		start += width
	}
	for i := start; i < len(data); {
		if !atEOF && !utf8.FullRune(data[i:]) {
			return start, nil, nil
		}
		r, width := utf8.DecodeRune(data[i:])
		if !isWordRune(r) {
			return i + width, data[start:i], nil
		}
		i += width
	}
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	// Request more data.
	return start, nil, nil
}

func normalize(word string) string {
	return strings.ToLower(strings.Trim(word, "'"))
}

// Tokenize feeds the lower-cased words of r with at least minLen
// runes to fn until fn returns false.
func Tokenize(r io.Reader, minLen int, fn func(word string) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	scanner.Split(ScanWords)
	for scanner.Scan() {
		word := normalize(scanner.Text())
		if word == "" || utf8.RuneCountInString(word) < minLen {
			continue
		}
		if !fn(word) {
			return nil
		}
	}
	return infra.WrapErrorStackWithMessage(scanner.Err(), "tokenize")
}
