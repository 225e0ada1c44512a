package textnorm

import (
	"regexp"
	"strings"
)

var (
	urlPattern     = regexp.MustCompile(`http\S+`)
	mentionPattern = regexp.MustCompile(`[@#]\w+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Normalize strips URLs and @mention/#hashtag tokens, lowercases, collapses
// whitespace and trims. An empty result means the item carried no usable text.
func Normalize(text string) string {
	t := urlPattern.ReplaceAllString(text, "")
	t = mentionPattern.ReplaceAllString(t, "")
	t = strings.ToLower(t)
	t = spacePattern.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
