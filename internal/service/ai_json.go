package service

import (
	"encoding/json"
	"helloworld_backend/internal/util"
	"regexp"
	"strings"
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	objectJSONRe = regexp.MustCompile(`(?s)\{.*\}`)
	arrayJSONRe  = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractJSON 从模型回复中取出 JSON：优先代码块，其次从第一个 { / [ 到最后一个 } / ]
func ExtractJSON(text string, out interface{}) error {
	candidates := []string{}
	for _, m := range fencedJSONRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	candidates = append(candidates, strings.TrimSpace(text))

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	first, second := objectJSONRe, arrayJSONRe
	if arrIdx >= 0 && (objIdx < 0 || arrIdx < objIdx) {
		first, second = arrayJSONRe, objectJSONRe
	}
	if m := first.FindString(text); m != "" {
		candidates = append(candidates, m)
	}
	if m := second.FindString(text); m != "" {
		candidates = append(candidates, m)
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if err := json.Unmarshal([]byte(c), out); err == nil {
			return nil
		}
	}
	return util.ErrInvalidAIResponse
}
