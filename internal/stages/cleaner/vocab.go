package cleaner

import (
	_ "embed"
	"strings"
)

// words.txt carries common English prose words plus the vocabulary of
// scanned government financial documents (forms, accounts, works). The
// cleaner treats any alphabetic token outside this list as a correction
// candidate.
//
//go:embed words.txt
var wordsFile string

func embeddedVocabulary() []string {
	var words []string
	for _, line := range strings.Split(wordsFile, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.Fields(line)...)
	}
	return words
}
