// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonpath builds, parses, and evaluates the JSONPath subset
// used for citations: root $, field access .key or ['key'], index [n],
// and wildcard [*]. The string grammar is a wire contract shared with
// every consumer of evidence bundles.
package jsonpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPath marks unparseable paths. Callers treat a malformed
// path as "no match"; a single bad citation never fails a bundle.
var ErrMalformedPath = errors.New("malformed json path")

// TokenKind discriminates path tokens.
type TokenKind int

const (
	// TokenKey selects an object field.
	TokenKey TokenKind = iota
	// TokenIndex selects one array element.
	TokenIndex
	// TokenWildcard fans out over array elements or object values.
	TokenWildcard
)

// Token is one step of a parsed path.
type Token struct {
	Kind  TokenKind
	Key   string
	Index int
}

// isBareKey reports whether key renders as .key without quoting: it must
// be non-empty, not start with a digit, and contain only alphanumerics
// and underscores.
func isBareKey(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		isAlnum := r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum {
			return false
		}
		if i == 0 && r >= '0' && r <= '9' {
			return false
		}
	}
	return true
}

func formatKey(key string) string {
	if isBareKey(key) {
		return "." + key
	}
	escaped := strings.ReplaceAll(key, `'`, `\'`)
	return "['" + escaped + "']"
}

// AppendKey extends base with an object field access segment.
func AppendKey(base, key string) string {
	if base == "" {
		base = "$"
	}
	return base + formatKey(key)
}

// AppendIndex extends base with an array index segment.
func AppendIndex(base string, index int) string {
	if base == "" {
		base = "$"
	}
	return base + "[" + strconv.Itoa(index) + "]"
}

// Wildcard turns a path into its wildcard form: $.a becomes $.a[*].
func Wildcard(path string) string {
	return path + "[*]"
}

// Join builds a path from the root through the given key parts.
func Join(keys ...string) string {
	path := "$"
	for _, key := range keys {
		path = AppendKey(path, key)
	}
	return path
}

// Parse tokenizes a path string. It fails with ErrMalformedPath when the
// path does not start with $, a bracket or quoted key is unterminated,
// or a bracketed segment is neither an integer nor *.
func Parse(path string) ([]Token, error) {
	if path == "" || path[0] != '$' {
		return nil, fmt.Errorf("%w: %q does not start with $", ErrMalformedPath, path)
	}
	var tokens []Token
	i := 1
	n := len(path)

	for i < n {
		switch path[i] {
		case '.':
			i++
			start := i
			for i < n && path[i] != '.' && path[i] != '[' {
				i++
			}
			if key := path[start:i]; key != "" {
				tokens = append(tokens, Token{Kind: TokenKey, Key: key})
			}
		case '[':
			i++
			if i >= n {
				return nil, fmt.Errorf("%w: unclosed bracket in %q", ErrMalformedPath, path)
			}
			if path[i] == '\'' {
				i++
				var b strings.Builder
				for i < n && path[i] != '\'' {
					if path[i] == '\\' && i+1 < n {
						b.WriteByte(path[i+1])
						i += 2
						continue
					}
					b.WriteByte(path[i])
					i++
				}
				if i >= n {
					return nil, fmt.Errorf("%w: unterminated quoted key in %q", ErrMalformedPath, path)
				}
				i++ // closing quote
				if i >= n || path[i] != ']' {
					return nil, fmt.Errorf("%w: missing closing bracket in %q", ErrMalformedPath, path)
				}
				i++
				tokens = append(tokens, Token{Kind: TokenKey, Key: b.String()})
			} else {
				start := i
				for i < n && path[i] != ']' {
					i++
				}
				if i >= n {
					return nil, fmt.Errorf("%w: missing closing bracket in %q", ErrMalformedPath, path)
				}
				content := path[start:i]
				i++
				if content == "*" {
					tokens = append(tokens, Token{Kind: TokenWildcard})
				} else {
					index, err := strconv.Atoi(content)
					if err != nil {
						return nil, fmt.Errorf("%w: unsupported index %q in %q", ErrMalformedPath, content, path)
					}
					tokens = append(tokens, Token{Kind: TokenIndex, Index: index})
				}
			}
		default:
			return nil, fmt.Errorf("%w: unexpected character %q in %q", ErrMalformedPath, path[i], path)
		}
	}
	return tokens, nil
}

// Matches reports whether a candidate path matches a glob pattern where
// * matches any run of characters and ? matches one character. A **
// collapses to *; there is no recursive-descent wildcard. Deny-path
// policies depend on this weaker match.
func Matches(candidate, pattern string) bool {
	pattern = strings.ReplaceAll(pattern, "**", "*")
	return globMatch(candidate, pattern)
}

// globMatch is a classic iterative glob matcher with single-star
// backtracking.
func globMatch(s, p string) bool {
	si, pi := 0, 0
	starPi, starSi := -1, 0

	for si < len(s) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == s[si]):
			si++
			pi++
		case pi < len(p) && p[pi] == '*':
			starPi = pi
			starSi = si
			pi++
		case starPi >= 0:
			starSi++
			si = starSi
			pi = starPi + 1
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
