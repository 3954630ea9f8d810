package utils

import "github.com/sethvargo/go-password/password"

// GenerateSessionSecret returns a random secret suitable for signing session
// tokens. Symbols are excluded so the value survives JSON config round-trips
// and copy-paste.
func GenerateSessionSecret() (string, error) {
	return password.Generate(48, 12, 0, false, true)
}
