package util

import (
	"mime"
	"strings"
)

// IsAudio 根据 Content-Type 判断是否为音频
func IsAudio(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "audio/")
}
