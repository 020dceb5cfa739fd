// Package magnet detects magnet-link tokens in free-form text.
package magnet

import "regexp"

// A magnet token is "magnet:?" followed by any run of non-whitespace.
// Detection is purely syntactic; the daemon is the authority on whether
// a link is actually usable.
var pattern = regexp.MustCompile(`magnet:\?[^\s]+`)

// Extract returns every magnet token in text, in order of first
// appearance. Repeated tokens are returned as many times as they occur.
// A nil result means no token was found.
func Extract(text string) []string {
	return pattern.FindAllString(text, -1)
}
