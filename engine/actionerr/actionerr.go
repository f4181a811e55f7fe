// Package actionerr defines the typed action-stage errors from spec.md §7 —
// failures discovered once an object is resolved and the action pipeline (or
// the parser's RequiresLight check) evaluates whether the action can proceed.
package actionerr

import "fmt"

type NotHeld struct{ Noun string }

func (e *NotHeld) Error() string { return fmt.Sprintf("You aren't holding the %s.", e.Noun) }

type NotReachable struct{ Noun string }

func (e *NotReachable) Error() string { return fmt.Sprintf("You can't reach the %s.", e.Noun) }

type TooHeavy struct{ Noun string }

func (e *TooHeavy) Error() string { return fmt.Sprintf("The %s is too heavy to carry.", e.Noun) }

type ContainerClosed struct{ Noun string }

func (e *ContainerClosed) Error() string { return fmt.Sprintf("The %s is closed.", e.Noun) }

type Locked struct{ Noun string }

func (e *Locked) Error() string { return fmt.Sprintf("The %s is locked.", e.Noun) }

type CannotSeeInDark struct{}

func (e *CannotSeeInDark) Error() string { return "It's too dark to see." }

type Immovable struct{ Noun string }

func (e *Immovable) Error() string { return fmt.Sprintf("The %s won't budge.", e.Noun) }

type AlreadyWorn struct{ Noun string }

func (e *AlreadyWorn) Error() string { return fmt.Sprintf("You're already wearing the %s.", e.Noun) }
