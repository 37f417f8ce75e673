package audit

import "github.com/mssola/useragent"

// DeviceSummary condenses a raw User-Agent header into a short
// human-readable description like "Chrome on Mac OS X" for audit detail
// fields. Unknown agents come back as "unknown device".
func DeviceSummary(rawUA string) string {
	if rawUA == "" {
		return "unknown device"
	}
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name

	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	case ua.Bot():
		return "bot"
	default:
		return "unknown device"
	}
}
