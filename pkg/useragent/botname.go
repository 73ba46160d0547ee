package useragent

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Checked in order; the first keyword contained in the lowercased UA wins.
var knownBots = []struct{ keyword, name string }{
	{"googlebot", "Googlebot"},
	{"adsbot-google", "AdsBot-Google"},
	{"google-inspectiontool", "Google-InspectionTool"},
	{"bingbot", "Bingbot"},
	{"duckduckbot", "DuckDuckBot"},
	{"yandexbot", "YandexBot"},
	{"baiduspider", "Baiduspider"},
	{"applebot", "Applebot"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedInBot"},
	{"slackbot", "Slackbot"},
	{"telegrambot", "TelegramBot"},
	{"python-requests", "Python Requests"},
	{"headlesschrome", "HeadlessChrome"},
}

var botNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([a-z0-9\-_]+bot)\b`),
	regexp.MustCompile(`(?i)([a-z0-9\-_]+spider)`),
	regexp.MustCompile(`(?i)([a-z0-9\-_]+crawler)`),
	regexp.MustCompile(`(?i)^([a-z][a-z0-9\-_.]+)/[0-9]`),
}

// BotName returns a display name for an automated client, or "Unknown Bot"
// when nothing recognizable is found.
func BotName(ua string) string {
	lower := strings.ToLower(ua)
	for _, b := range knownBots {
		if strings.Contains(lower, b.keyword) {
			return b.name
		}
	}

	title := cases.Title(language.English)
	for _, re := range botNamePatterns {
		if m := re.FindStringSubmatch(ua); len(m) > 1 {
			return title.String(strings.ToLower(m[1]))
		}
	}

	return "Unknown Bot"
}
