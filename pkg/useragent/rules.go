package useragent

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrymomot/leasekit/pkg/config"
)

// Signature is a regular expression that identifies automated clients.
// NotAfter suppresses a match that is immediately preceded by the given
// text, which is how "bot" excludes "googlebot" without lookbehind support
// in RE2.
type Signature struct {
	Pattern  string `yaml:"pattern"`
	NotAfter string `yaml:"not_after,omitempty"`
}

// Rules is the full classifier configuration.
type Rules struct {
	Crawlers   []string    `yaml:"crawlers"`
	Denied     []string    `yaml:"denied"`
	Signatures []Signature `yaml:"signatures"`
}

// DefaultRules returns the built-in allow-list, deny-list and signatures.
func DefaultRules() Rules {
	return Rules{
		Crawlers: []string{
			"googlebot",
			"google-inspectiontool",
			"adsbot-google",
			"mediapartners-google",
			"bingbot",
			"slurp",
			"duckduckbot",
			"baiduspider",
			"yandexbot",
			"applebot",
			"facebookexternalhit",
			"twitterbot",
			"linkedinbot",
			"slackbot",
			"discordbot",
			"telegrambot",
			"whatsapp",
		},
		Denied: []string{
			"python-requests",
			"python-urllib",
			"aiohttp",
			"httpx",
			"curl/",
			"wget/",
			"scrapy",
			"httpclient",
			"okhttp",
			"go-http-client",
			"java/",
			"libwww-perl",
			"node-fetch",
			"axios/",
			"ahrefsbot",
			"semrushbot",
			"mj12bot",
			"dotbot",
			"petalbot",
			"bytespider",
			"gptbot",
			"ccbot",
		},
		Signatures: []Signature{
			{Pattern: `bot`, NotAfter: "google"},
			{Pattern: `crawl`},
			{Pattern: `spider`},
			{Pattern: `scrap(e|er|ing)`},
			{Pattern: `headless`},
			{Pattern: `phantomjs`},
			{Pattern: `selenium`},
			{Pattern: `puppeteer`},
			{Pattern: `playwright`},
			{Pattern: `webdriver`},
		},
	}
}

// LoadRules reads rules from a YAML file. Lists missing from the file keep
// their DefaultRules values.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if err := config.LoadYAML(path, &rules); err != nil {
		return Rules{}, errors.Join(ErrLoadingRules, err)
	}
	return rules, nil
}

type signature struct {
	source   string
	re       *regexp.Regexp
	notAfter string
}

// matches reports whether any occurrence of the pattern in lowerUA is not
// preceded by the NotAfter text.
func (s signature) matches(lowerUA string) bool {
	if s.notAfter == "" {
		return s.re.MatchString(lowerUA)
	}
	for _, loc := range s.re.FindAllStringIndex(lowerUA, -1) {
		if !strings.HasSuffix(lowerUA[:loc[0]], s.notAfter) {
			return true
		}
	}
	return false
}

type compiledRules struct {
	crawlers   []string
	denied     []string
	signatures []signature
}

func compile(r Rules) (compiledRules, error) {
	c := compiledRules{
		crawlers: normalize(r.Crawlers),
		denied:   normalize(r.Denied),
	}
	for _, sig := range r.Signatures {
		if strings.TrimSpace(sig.Pattern) == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + sig.Pattern)
		if err != nil {
			return compiledRules{}, errors.Join(ErrInvalidSignature, fmt.Errorf("%q: %w", sig.Pattern, err))
		}
		c.signatures = append(c.signatures, signature{
			source:   sig.Pattern,
			re:       re,
			notAfter: strings.ToLower(sig.NotAfter),
		})
	}
	return c, nil
}

func normalize(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
