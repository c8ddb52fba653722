// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsonpath

import (
	"errors"
	"reflect"
	"testing"
)

func TestAppendKeyQuoting(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"bare identifier", "status", "$.status"},
		{"underscore", "order_id", "$.order_id"},
		{"empty key", "", "$['']"},
		{"leading digit", "2fa", "$['2fa']"},
		{"hyphenated", "content-type", "$['content-type']"},
		{"embedded quote", "it's", `$['it\'s']`},
		{"space", "full name", "$['full name']"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AppendKey("$", tt.key); got != tt.want {
				t.Errorf("AppendKey($, %q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestParseAppendRoundTrip(t *testing.T) {
	path := "$"
	path = AppendKey(path, "orders")
	path = AppendIndex(path, 2)
	path = AppendKey(path, "weird key")
	path = AppendKey(path, "total")

	tokens, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", path, err)
	}
	want := []Token{
		{Kind: TokenKey, Key: "orders"},
		{Kind: TokenIndex, Index: 2},
		{Kind: TokenKey, Key: "weird key"},
		{Kind: TokenKey, Key: "total"},
	}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("Parse(%q) = %+v, want %+v", path, tokens, want)
	}
}

func TestParseWildcard(t *testing.T) {
	tokens, err := Parse("$.orders[*].total")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []Token{
		{Kind: TokenKey, Key: "orders"},
		{Kind: TokenWildcard},
		{Kind: TokenKey, Key: "total"},
	}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("Parse() = %+v, want %+v", tokens, want)
	}
}

func TestParseRootOnly(t *testing.T) {
	tokens, err := Parse("$")
	if err != nil {
		t.Fatalf("Parse($) error = %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("Parse($) = %+v, want no tokens", tokens)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing root", "orders[0]"},
		{"empty", ""},
		{"unclosed bracket", "$.orders["},
		{"missing closing bracket", "$.orders[3"},
		{"unterminated quote", "$['key"},
		{"quoted missing bracket", "$['key'"},
		{"non-numeric index", "$.orders[abc]"},
		{"stray character", "$orders"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.path)
			if !errors.Is(err, ErrMalformedPath) {
				t.Errorf("Parse(%q) error = %v, want ErrMalformedPath", tt.path, err)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		pattern   string
		want      bool
	}{
		{"exact", "$.access_token", "$.access_token", true},
		{"star spans segments", "$.users[0].token", "$.users*token", true},
		{"star any run", "$.a.secret", "$.*.secret", true},
		{"double star collapses to star", "$.a.b.secret", "$**secret", true},
		{"question mark", "$.a", "$.?", true},
		{"no wildcard means literal", "$.user.password", "$..password", false},
		{"mismatch", "$.a.b", "$.c*", false},
		{"trailing star", "$.metrics.cpu", "$.metrics*", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.candidate, tt.pattern); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.candidate, tt.pattern, got, tt.want)
			}
		})
	}
}
