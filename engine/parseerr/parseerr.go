// Package parseerr defines the typed parse errors from spec.md §7, in the
// priority order the parser uses to pick the most informative failure
// (spec.md §4.2 step 4: AmbiguousObject > ObjectNotInScope > WrongSyntax).
package parseerr

import (
	"fmt"
	"strings"

	"github.com/nathoo/questcore/types"
)

// Priority ranks error kinds for "most informative failure" selection.
// Higher wins.
func priority(err error) int {
	switch err.(type) {
	case *AmbiguousObject:
		return 3
	case *ObjectNotInScope, *ObjectConditionFailed:
		return 2
	case *WrongSyntax:
		return 1
	default:
		return 0
	}
}

// MostInformative returns whichever of a, b ranks higher per spec.md §4.2
// step 4. A nil argument loses to any non-nil error.
func MostInformative(a, b error) error {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if priority(b) > priority(a) {
		return b
	}
	return a
}

type UnknownVerb struct{ Word string }

func (e *UnknownVerb) Error() string { return fmt.Sprintf("I don't know the verb %q.", e.Word) }

type UnknownNoun struct{ Word string }

func (e *UnknownNoun) Error() string { return fmt.Sprintf("I don't know what %q refers to.", e.Word) }

type AmbiguousObject struct {
	Noun       string
	Candidates []types.ItemID
}

func (e *AmbiguousObject) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = string(c)
	}
	return fmt.Sprintf("Which %s do you mean: %s?", e.Noun, strings.Join(names, ", "))
}

type NoAntecedent struct{ Pronoun string }

func (e *NoAntecedent) Error() string {
	return fmt.Sprintf("I don't know what %q refers to yet.", e.Pronoun)
}

type ObjectNotInScope struct{ Noun string }

func (e *ObjectNotInScope) Error() string {
	return fmt.Sprintf("You can't see any %s here.", e.Noun)
}

type ObjectConditionFailed struct {
	Noun string
	Cond types.Cond
}

func (e *ObjectConditionFailed) Error() string {
	return fmt.Sprintf("You can't do that with the %s.", e.Noun)
}

type WrongSyntax struct{ Verb string }

func (e *WrongSyntax) Error() string {
	return fmt.Sprintf("I didn't understand that sentence for %q.", e.Verb)
}
