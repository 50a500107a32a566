// Package genres maps free-form artist genre tags onto a small set of main genre buckets.
//
// Rules are evaluated in order and the first match wins. Comparison is case-insensitive but the
// tag itself is never rewritten; callers keep the original spelling as the aggregate key.
package genres

import "strings"

// Others is the bucket for tags no rule claims.
const Others = "others"

// rule matches a lower-cased tag exactly against exact, or as a substring against contains.
type rule struct {
	bucket   string
	exact    []string
	contains []string
}

func (r rule) match(tag string) bool {
	for _, e := range r.exact {
		if tag == e {
			return true
		}
	}
	for _, c := range r.contains {
		if strings.Contains(tag, c) {
			return true
		}
	}
	return false
}

// spaced builds the common "word, or word bounded by a space on either side" rule.
func spaced(word string) rule {
	return rule{bucket: word, exact: []string{word}, contains: []string{" " + word, word + " "}}
}

// rules are ordered; "hard rock" must land in rock before pop or indie get a chance.
//
// "-pop" is an exact literal, so hyphenated tags such as "k-pop" fall through to others.
var rules = []rule{
	{bucket: "metal", exact: []string{"metal", "metalcore"}, contains: []string{" metal", " metalcore"}},
	{bucket: "rock", exact: []string{"rock"}, contains: []string{" rock"}},
	{bucket: "pop", exact: []string{"pop", "electropop", "synthpop", "scandipop", "-pop"}, contains: []string{" pop", "pop "}},
	{bucket: "indie", contains: []string{"indie"}},
	{bucket: "hip hop", contains: []string{"hip hop"}},
	spaced("rap"),
	spaced("r&b"),
	spaced("trap"),
	spaced("dance"),
	spaced("house"),
	{bucket: "grunge", contains: []string{"grunge"}},
	spaced("country"),
	spaced("latin"),
	spaced("reggaeton"),
}

// Classify returns the main genre bucket for tag. It is total: every input gets exactly one bucket.
//
// The enrichment sentinel "error" is not special-cased and lands in [Others].
func Classify(tag string) string {
	lower := strings.ToLower(tag)
	for _, r := range rules {
		if r.match(lower) {
			return r.bucket
		}
	}
	return Others
}

// Buckets lists every bucket Classify can return, in rule order, followed by [Others].
func Buckets() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.bucket)
	}
	return append(out, Others)
}
