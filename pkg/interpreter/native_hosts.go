package interpreter

import (
	"regexp"
	"strings"
)

// hostStringBuilder backs the StringBuilder allow-list entry with a
// strings.Builder. Append is fluent and returns the receiver.
type hostStringBuilder struct {
	b strings.Builder
}

func (s *hostStringBuilder) Append(text string) *hostStringBuilder {
	s.b.WriteString(text)
	return s
}

func (s *hostStringBuilder) ToString() string { return s.b.String() }

func (s *hostStringBuilder) Length() int32 { return int32(len([]rune(s.b.String()))) }

func (s *hostStringBuilder) Reverse() *hostStringBuilder {
	runes := []rune(s.b.String())
	for l, r := 0, len(runes)-1; l < r; l, r = l+1, r-1 {
		runes[l], runes[r] = runes[r], runes[l]
	}
	s.b.Reset()
	s.b.WriteString(string(runes))
	return s
}

func (s *hostStringBuilder) String() string { return s.b.String() }

// hostRegex backs the Regex allow-list entry. Matches tests the whole input,
// so the pattern is compiled a second time in an anchored form.
type hostRegex struct {
	pattern  string
	search   *regexp.Regexp
	anchored *regexp.Regexp
}

func newHostRegex(pattern string) (*hostRegex, error) {
	search, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	anchored, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, err
	}
	return &hostRegex{pattern: pattern, search: search, anchored: anchored}, nil
}

func (r *hostRegex) Matches(input string) bool {
	return r.anchored.MatchString(input)
}

func (r *hostRegex) Replace(input, replacement string) string {
	return r.search.ReplaceAllString(input, replacement)
}

func (r *hostRegex) String() string { return r.pattern }
