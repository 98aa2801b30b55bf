package model

type ContentType string

const (
	ContentJoke    ContentType = "joke"
	ContentNews    ContentType = "news"
	ContentWebpage ContentType = "webpage"
)

func (t ContentType) String() string { return string(t) }

// ParseContentType matches the three tags exactly. There is no default type:
// anything outside the closed set, including "" and "JOKE", returns ("", false).
func ParseContentType(s string) (ContentType, bool) {
	switch ContentType(s) {
	case ContentJoke:
		return ContentJoke, true
	case ContentNews:
		return ContentNews, true
	case ContentWebpage:
		return ContentWebpage, true
	default:
		return "", false
	}
}

// ContentEnvelope is the normalized shape every dispatch request is reduced to.
type ContentEnvelope struct {
	ContentType ContentType `json:"content_type"`
	To          string      `json:"to"`
	Body        string      `json:"body"`
}
