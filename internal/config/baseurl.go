package config

import (
	"os"
	"strings"
)

// URLSource is one entry of the base URL precedence list.
type URLSource struct {
	Name  string
	Value func() string
}

// Static returns a source that always yields value.
func Static(name, value string) URLSource {
	return URLSource{Name: name, Value: func() string { return value }}
}

// Env returns a source reading the named environment variable.
func Env(key string) URLSource {
	return URLSource{Name: "env:" + key, Value: func() string { return os.Getenv(key) }}
}

// DefaultSources is the precedence used by the client: flag, VITALMOTION_API_URL,
// the legacy VITE_API_URL, then the built-in deployment.
func DefaultSources(override string) []URLSource {
	return []URLSource{
		Static("flag", override),
		Env("VITALMOTION_API_URL"),
		Env("VITE_API_URL"),
		Static("default", DefaultAPIBaseURL),
	}
}

// ResolveBaseURL returns the first non-blank source value, trimmed of trailing slashes,
// together with the name of the source that provided it.
func ResolveBaseURL(sources ...URLSource) (string, string) {
	for _, src := range sources {
		if src.Value == nil {
			continue
		}
		if v := strings.TrimSpace(src.Value()); v != "" {
			return strings.TrimRight(v, "/"), src.Name
		}
	}
	return "", ""
}
