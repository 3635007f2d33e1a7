package toolkit

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

const wordsPerMinute = 200

type TextStats struct {
	Characters         int `json:"characters"`
	CharactersNoSpaces int `json:"charactersNoSpaces"`
	Words              int `json:"words"`
	Sentences          int `json:"sentences"`
	Lines              int `json:"lines"`
	Paragraphs         int `json:"paragraphs"`
	ReadingMinutes     int `json:"readingMinutes"`
}

func AnalyzeText(text string) TextStats {
	st := TextStats{Characters: utf8.RuneCountInString(text)}
	for _, r := range text {
		if !unicode.IsSpace(r) {
			st.CharactersNoSpaces++
		}
	}
	st.Words = len(strings.Fields(text))
	if strings.TrimSpace(text) == "" {
		return st
	}

	st.Lines = strings.Count(strings.TrimRight(text, "\n"), "\n") + 1

	// 连续的 .!? 算一个句末
	inTerminator := false
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if !inTerminator {
				st.Sentences++
			}
			inTerminator = true
			continue
		}
		inTerminator = false
	}
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if last, _ := utf8.DecodeLastRuneInString(trimmed); last != '.' && last != '!' && last != '?' {
		st.Sentences++
	}

	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(p) != "" {
			st.Paragraphs++
		}
	}

	st.ReadingMinutes = int(math.Ceil(float64(st.Words) / wordsPerMinute))
	return st
}
