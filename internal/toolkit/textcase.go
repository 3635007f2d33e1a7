package toolkit

import (
	"fmt"
	"strings"
	"unicode"
)

var CaseModes = []string{"upper", "lower", "title", "sentence", "camel", "snake", "kebab"}

func ConvertCase(text, mode string) (string, error) {
	switch strings.ToLower(mode) {
	case "upper":
		return strings.ToUpper(text), nil
	case "lower":
		return strings.ToLower(text), nil
	case "title":
		return titleCase(text), nil
	case "sentence":
		return sentenceCase(text), nil
	case "camel":
		words := splitWords(text)
		for i, w := range words {
			if i == 0 {
				words[i] = strings.ToLower(w)
			} else {
				words[i] = capitalize(w)
			}
		}
		return strings.Join(words, ""), nil
	case "snake":
		return strings.ToLower(strings.Join(splitWords(text), "_")), nil
	case "kebab":
		return strings.ToLower(strings.Join(splitWords(text), "-")), nil
	default:
		return "", fmt.Errorf("unknown case mode %q, expected one of %s", mode, strings.Join(CaseModes, ", "))
	}
}

func capitalize(word string) string {
	rs := []rune(strings.ToLower(word))
	if len(rs) == 0 {
		return ""
	}
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}

// titleCase 保留原有空白，只改每个单词的首字母
func titleCase(text string) string {
	rs := []rune(text)
	start := true
	for i, r := range rs {
		if unicode.IsSpace(r) {
			start = true
			continue
		}
		if start {
			rs[i] = unicode.ToUpper(r)
			start = false
		} else {
			rs[i] = unicode.ToLower(r)
		}
	}
	return string(rs)
}

func sentenceCase(text string) string {
	rs := []rune(strings.ToLower(text))
	start := true
	for i, r := range rs {
		switch {
		case r == '.' || r == '!' || r == '?':
			start = true
		case start && unicode.IsLetter(r):
			rs[i] = unicode.ToUpper(r)
			start = false
		case start && !unicode.IsSpace(r):
			start = false
		}
	}
	return string(rs)
}

// splitWords 按非字母数字和驼峰边界拆词，"parseHTTPRequest" -> parse HTTP Request
func splitWords(text string) []string {
	var words []string
	var cur []rune
	rs := []rune(text)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
