package audit

import (
	"strings"

	ua "github.com/mssola/useragent"
)

// DeviceSummary renders a User-Agent into a short human-readable label for
// audit details, e.g. "Chrome on Mac OS X". Unparseable agents fall back to
// "Unknown Device" rather than leaking the raw string into the trail.
func DeviceSummary(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}

	parsed := ua.New(userAgent)
	browser, _ := parsed.Browser()
	os := parsed.OSInfo().Name

	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	}

	// Non-browser clients (curl, SDKs) often have a bare product token.
	if token, _, found := strings.Cut(userAgent, "/"); found && token != "" {
		return token
	}
	return "Unknown Device"
}
