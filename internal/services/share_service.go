package services

import (
	"net/url"
	"strings"

	"notlikethat/internal/config"
	"notlikethat/internal/models"
)

// ShareLink is one social network share target
type ShareLink struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}

// ShareLinks builds the share intents for item pointing back at pageURL.
// The text is cut to config.ShareTextLimit characters before encoding.
func ShareLinks(item models.MisconceptionItem, pageURL string) []ShareLink {
	text := encodeComponent(TruncateRunes(item.Text, config.ShareTextLimit))
	link := encodeComponent(pageURL)

	return []ShareLink{
		{Network: "twitter", URL: "https://twitter.com/intent/tweet?text=" + text + "&url=" + link},
		{Network: "facebook", URL: "https://www.facebook.com/sharer/sharer.php?u=" + link + "&quote=" + text},
		{Network: "whatsapp", URL: "https://wa.me/?text=" + text + "%20" + link},
		{Network: "reddit", URL: "https://reddit.com/submit?url=" + link + "&title=" + text},
		{Network: "mastodon", URL: "https://mastodon.social/share?text=" + text + "%20" + link},
	}
}

// TruncateRunes returns at most n characters of s
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// componentUnescaper restores the characters that QueryEscape encodes but
// URI components leave alone.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes s for use as a query value, spaces as %20.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
