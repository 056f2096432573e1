package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup returns the text content of an HTML fragment. Rich-text chat
// inputs hand over markup such as "<p>50 kg <b>cotton</b></p>"; plain text is
// returned unchanged. Entities are decoded and script/style bodies dropped.
func StripMarkup(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return raw
	}

	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; keep what was read
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

func isRawTextTag(name []byte) bool {
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
