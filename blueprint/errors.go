package blueprint

import "fmt"

// MissingGame is returned when a game's .lua files never call Game{...}.
type MissingGame struct{}

func (e *MissingGame) Error() string { return "no Game{} definition found" }

// MissingStartLocation is returned when Game{...} omits the start field.
type MissingStartLocation struct{}

func (e *MissingStartLocation) Error() string { return "Game{} is missing a start location" }

// UnknownLocationReference is returned when validate finds an exit,
// parent, or start field naming a location that was never defined.
type UnknownLocationReference struct {
	From     string
	Location string
}

func (e *UnknownLocationReference) Error() string {
	return fmt.Sprintf("%s references unknown location %q", e.From, e.Location)
}

// UnknownItemReference is returned when validate finds a parent or
// required-key field naming an item that was never defined.
type UnknownItemReference struct {
	From string
	Item string
}

func (e *UnknownItemReference) Error() string {
	return fmt.Sprintf("%s references unknown item %q", e.From, e.Item)
}

// UnknownCondition is returned when a verb's syntax table names a
// directConditions/indirectConditions word the compiler doesn't recognize.
type UnknownCondition struct {
	From string
	Word string
}

func (e *UnknownCondition) Error() string {
	return fmt.Sprintf("%s: unknown condition %q", e.From, e.Word)
}
