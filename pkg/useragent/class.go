package useragent

// Class is the outcome of classifying a user-agent.
type Class uint8

const (
	ClassUnclassified Class = iota
	ClassAllowCrawler
	ClassBlock
)

func (c Class) String() string {
	switch c {
	case ClassAllowCrawler:
		return "allow_crawler"
	case ClassBlock:
		return "block"
	default:
		return "unclassified"
	}
}

// Verdict describes why a user-agent landed in its class.
type Verdict struct {
	Class Class
	// Match is the allow-list entry, denied substring or signature pattern
	// that decided the class. Empty for ClassUnclassified.
	Match string
	// BotName is a display name for crawlers and blocked bots.
	BotName string
}

// Allowed reports whether the caller is an allow-listed crawler.
func (v Verdict) Allowed() bool { return v.Class == ClassAllowCrawler }

// Blocked reports whether the caller must be rejected.
func (v Verdict) Blocked() bool { return v.Class == ClassBlock }
