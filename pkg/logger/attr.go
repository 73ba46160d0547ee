package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// IP records the caller address under the key "ip".
func IP(ip string) slog.Attr {
	if ip == "" {
		return slog.Attr{}
	}
	return slog.String("ip", ip)
}

// Path records the request path under the key "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// UserAgent records the raw user-agent under the key "user_agent".
func UserAgent(ua string) slog.Attr {
	if ua == "" {
		return slog.Attr{}
	}
	return slog.String("user_agent", ua)
}

// Verdict records a gatekeeper classification under the key "verdict".
func Verdict(v string) slog.Attr {
	return slog.String("verdict", v)
}

// BotName records a crawler name under the key "bot".
func BotName(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("bot", name)
}

// Tier records a session storage tier under the key "tier".
func Tier(t string) slog.Attr {
	return slog.String("tier", t)
}

// Email records an identity email under the key "email".
func Email(email string) slog.Attr {
	if email == "" {
		return slog.Attr{}
	}
	return slog.String("email", email)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
