package domain

import "strings"

// DefaultCity is the pricing locale the upstream reports when none is asked for.
const DefaultCity = "Mumbai"

// NormalizeCity trims the requested city and falls back to DefaultCity
// when the request carries none.
func NormalizeCity(city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		return DefaultCity
	}
	return city
}
