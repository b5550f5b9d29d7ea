package upstream

import "strings"

// TokenCookie is the cookie the solver page sets the bearer token in.
const TokenCookie = "sy2.pub.token"

// tokenFromSetCookie finds TokenCookie among Set-Cookie header values.
// Proxies sometimes fold several cookies into one header separated by
// ", ", so each "; " attribute is split again on ", ".
func tokenFromSetCookie(headers []string) (string, bool) {
	for _, h := range headers {
		for _, attr := range strings.Split(h, "; ") {
			for _, pair := range strings.Split(attr, ", ") {
				name, value, ok := strings.Cut(pair, "=")
				if ok && name == TokenCookie {
					return value, true
				}
			}
		}
	}
	return "", false
}
