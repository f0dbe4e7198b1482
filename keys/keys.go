package keys

import "strings"

// SecretEnvPrefix marks environment variables that are prefetched into the
// secret cache.
const SecretEnvPrefix = "SECRET_"

// sensitiveMarkers are matched case-insensitively anywhere in a key.
var sensitiveMarkers = []string{
	"password",
	"token",
	"secret",
	"apikey",
	"credential",
}

// overrideNamespaces are the prefixes of process overrides promoted into the
// merged property table.
var overrideNamespaces = []string{
	"app.",
	"db.",
	"api.",
}

// IsSensitive reports whether key names secret material.
func IsSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// SensitiveMarkers returns a copy of the substrings that make a key sensitive.
func SensitiveMarkers() []string {
	out := make([]string, len(sensitiveMarkers))
	copy(out, sensitiveMarkers)
	return out
}

// EnvName maps a dotted key to its environment variable name:
// dots become underscores and the result is upper-cased.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// FromSecretEnv maps a SECRET_-prefixed variable name to a dotted key by
// stripping the prefix, lower-casing and turning underscores into dots.
// ok is false when name does not carry the prefix.
func FromSecretEnv(name string) (key string, ok bool) {
	if !strings.HasPrefix(name, SecretEnvPrefix) {
		return "", false
	}
	trimmed := strings.TrimPrefix(name, SecretEnvPrefix)
	return strings.ReplaceAll(strings.ToLower(trimmed), "_", "."), true
}

// IsPromotable reports whether a process override with this key is layered
// into the merged property table at initialization.
func IsPromotable(key string) bool {
	for _, prefix := range overrideNamespaces {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// OverrideNamespaces returns a copy of the promoted override prefixes.
func OverrideNamespaces() []string {
	out := make([]string, len(overrideNamespaces))
	copy(out, overrideNamespaces)
	return out
}
