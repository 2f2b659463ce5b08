// Package sanitizer normalizes free-text fields before validation so that
// equality checks (duplicate vehicle names, city lookups) are not defeated
// by whitespace or casing noise.
package sanitizer

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}
