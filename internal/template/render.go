// Package template renders message templates against per-recipient variables.
//
// The default engine substitutes literal {key} tokens with case-insensitive
// key matching. Substitution happens in a single pass over the text, so a
// substituted value is never re-scanned for further tokens and the result does
// not depend on variable order. Tokens without a matching key stay verbatim.
package template

import (
	"regexp"
	"strings"
)

var (
	tokenRe = regexp.MustCompile(`\{([^{}]+)\}`)
	tagRe   = regexp.MustCompile(`<[^>]*>`)
)

// Render replaces every {key} token in text whose key matches a variable name
// case-insensitively. Empty text is returned unchanged; Render never fails.
func Render(text string, vars map[string]string) string {
	if text == "" || len(vars) == 0 {
		return text
	}

	lookup := make(map[string]string, len(vars))
	for k, v := range vars {
		lookup[strings.ToLower(k)] = v
	}

	return tokenRe.ReplaceAllStringFunc(text, func(token string) string {
		key := strings.ToLower(token[1 : len(token)-1])
		if val, ok := lookup[key]; ok {
			return val
		}
		return token
	})
}

// StripTags removes all HTML markup, leaving the text content. Used to derive
// a plain-text body when the caller supplies only HTML.
func StripTags(html string) string {
	return tagRe.ReplaceAllString(html, "")
}
