// Package clientinfo summarizes the client behind a verification request.
// Most verifiers arrive by scanning the printed QR code with a phone, so the
// platform split is worth logging and counting.
package clientinfo

import (
	"strings"

	"github.com/mssola/useragent"
)

// Info is a coarse description of a verifying client.
type Info struct {
	Browser  string
	OS       string
	Platform string // "mobile", "desktop" or "bot"
}

// Describe parses a User-Agent header into a coarse client description.
// Unknown or empty input yields "unknown" fields rather than an error.
func Describe(userAgentString string) Info {
	if strings.TrimSpace(userAgentString) == "" {
		return Info{Browser: "unknown", OS: "unknown", Platform: "unknown"}
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	browser = strings.ToLower(strings.TrimSpace(browser))
	if browser == "" {
		browser = "unknown"
	}

	os := strings.ToLower(strings.TrimSpace(ua.OS()))
	if os == "" {
		os = "unknown"
	}

	platform := "desktop"
	switch {
	case ua.Bot():
		platform = "bot"
	case ua.Mobile():
		platform = "mobile"
	}

	return Info{Browser: browser, OS: os, Platform: platform}
}
