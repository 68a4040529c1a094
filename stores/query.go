package stores

import (
	"net/url"
	"strings"
)

// setQueryParam sets or replaces a single query parameter on a URL while
// preserving every other parameter and its relative position. The stdlib
// url.Values encoder sorts keys, which would reorder existing parameters,
// so the query string is edited as an ordered pair list instead.
func setQueryParam(rawURL, key, value string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	encoded := url.QueryEscape(key) + "=" + url.QueryEscape(value)
	var pairs []string
	replaced := false
	if parsed.RawQuery != "" {
		for _, pair := range strings.Split(parsed.RawQuery, "&") {
			if pair == "" {
				continue
			}
			name := pair
			if i := strings.IndexByte(pair, '='); i >= 0 {
				name = pair[:i]
			}
			if decoded, err := url.QueryUnescape(name); err == nil {
				name = decoded
			}
			if name == key {
				if !replaced {
					pairs = append(pairs, encoded)
					replaced = true
				}
				continue
			}
			pairs = append(pairs, pair)
		}
	}
	if !replaced {
		pairs = append(pairs, encoded)
	}

	parsed.RawQuery = strings.Join(pairs, "&")
	return parsed.String()
}
