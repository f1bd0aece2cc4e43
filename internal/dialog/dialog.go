// Package dialog holds the small-talk heuristics and canned phrasing shared
// by conversation types: yes/no interpretation, fallback replies, and the
// phrase variety that keeps the assistant from sounding robotic.
package dialog

import (
	"math/rand"
	"regexp"
	"strings"
)

var noWords = []string{"no", "nope", "not now", "negative", "sorry"}

var yesWords = []string{"yes", "yep", "absolutely", "go ahead", "sure", "definitely"}

var greetings = []string{
	"Hi!",
	"Hello!",
	"Hey there!",
	"Good day!",
}

var genericReplies = []string{
	"Sorry, I'm not sure what to say to that!",
	"Hmm, I didn't follow that, sorry.",
	"I don't know what to do with that one, sorry!",
}

// YesOrNo interprets a statement as agreement or refusal. It returns "yes",
// "no", or "" when neither could be read from the text. Refusals are checked
// first so "sorry, yes ok" stays a refusal, matching how people soften a no.
func YesOrNo(statement string) string {
	statement = strings.ToLower(statement)
	for _, word := range noWords {
		if matchesWord(statement, word) {
			return "no"
		}
	}
	for _, word := range yesWords {
		if matchesWord(statement, word) {
			return "yes"
		}
	}
	return ""
}

func matchesWord(statement, word string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(statement)
}

// Greeting returns a conversational opener.
func Greeting() string {
	return greetings[rand.Intn(len(greetings))]
}

// GenericReply is the fallback for inbound messages nobody handled.
func GenericReply() string {
	return genericReplies[rand.Intn(len(genericReplies))]
}

// Plural returns a naive English plural of a noun, good enough for larder
// item names and group nouns (tins, boxes, berries).
func Plural(noun string) string {
	switch {
	case noun == "":
		return noun
	case strings.HasSuffix(noun, "s"), strings.HasSuffix(noun, "x"),
		strings.HasSuffix(noun, "z"), strings.HasSuffix(noun, "ch"),
		strings.HasSuffix(noun, "sh"):
		return noun + "es"
	case strings.HasSuffix(noun, "y") && !endsInVowelY(noun):
		return noun[:len(noun)-1] + "ies"
	default:
		return noun + "s"
	}
}

func endsInVowelY(noun string) bool {
	if len(noun) < 2 {
		return false
	}
	return strings.ContainsRune("aeiou", rune(noun[len(noun)-2]))
}
