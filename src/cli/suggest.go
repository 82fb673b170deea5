package cli

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/exp/slices"
)

// Suggest returns the items of haystack within maxSuggestionDistance edits of needle,
// closest first. Items equally close keep their original order.
func Suggest(needle string, haystack []string, maxSuggestionDistance int) []string {
	r := []rune(needle)
	options := make([]suggestion, 0, len(haystack))
	for _, straw := range haystack {
		if straw == "" || straw == needle {
			continue
		}
		if distance := levenshtein.DistanceForStrings(r, []rune(straw), levenshtein.DefaultOptions); distance <= maxSuggestionDistance {
			options = append(options, suggestion{s: straw, dist: distance})
		}
	}
	slices.SortStableFunc(options, func(a, b suggestion) bool { return a.dist < b.dist })
	ret := make([]string, len(options))
	for i, o := range options {
		ret[i] = o.s
	}
	return ret
}

// PrettyPrintSuggestion produces a single "Maybe you meant" message from the suggestions for
// needle, or the empty string if there aren't any.
func PrettyPrintSuggestion(needle string, haystack []string, maxSuggestionDistance int) string {
	options := Suggest(needle, haystack, maxSuggestionDistance)
	switch len(options) {
	case 0:
		return ""
	case 1:
		return "\nMaybe you meant " + options[0] + " ?"
	}
	// Leave a space before punctuation so the names can be selected without it.
	return "\nMaybe you meant " + strings.Join(options[:len(options)-1], " , ") + " or " + options[len(options)-1] + " ?"
}

type suggestion struct {
	s    string
	dist int
}
