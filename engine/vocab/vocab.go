// Package vocab implements the Vocabulary (spec.md §4.1): the mapping from
// surface words to canonical verb/item IDs, plus syntax rules, noise words,
// prepositions, pronouns, and direction words.
package vocab

import (
	"strings"

	"github.com/nathoo/questcore/types"
)

// standardDirections are always installed, per spec.md §4.1.
var standardDirections = map[string]types.DirectionID{
	"north": "north", "n": "north",
	"south": "south", "s": "south",
	"east": "east", "e": "east",
	"west": "west", "w": "west",
	"northeast": "northeast", "ne": "northeast",
	"northwest": "northwest", "nw": "northwest",
	"southeast": "southeast", "se": "southeast",
	"southwest": "southwest", "sw": "southwest",
	"up": "up", "u": "up",
	"down": "down", "d": "down",
	"in":  "in",
	"out": "out",
}

// Vocabulary holds every surface-word mapping the parser consults.
type Vocabulary struct {
	Verbs       map[string]types.VerbID
	Items       map[string]map[types.ItemID]struct{}
	Adjectives  map[string]map[types.ItemID]struct{}
	Directions  map[string]types.DirectionID
	NoiseWords  map[string]struct{}
	Prepositions map[string]struct{}
	Pronouns    map[string]struct{}
	SyntaxRules map[types.VerbID][]types.SyntaxRule
}

// New returns an empty Vocabulary with the standard directions, a default
// noise-word list, prepositions, and pronouns already installed.
func New() *Vocabulary {
	v := &Vocabulary{
		Verbs:        map[string]types.VerbID{},
		Items:        map[string]map[types.ItemID]struct{}{},
		Adjectives:   map[string]map[types.ItemID]struct{}{},
		Directions:   map[string]types.DirectionID{},
		NoiseWords:   map[string]struct{}{},
		Prepositions: map[string]struct{}{},
		Pronouns:     map[string]struct{}{},
		SyntaxRules:  map[types.VerbID][]types.SyntaxRule{},
	}
	for word, dir := range standardDirections {
		v.Directions[word] = dir
	}
	for _, w := range []string{"the", "a", "an", "please", "now"} {
		v.NoiseWords[w] = struct{}{}
	}
	for _, w := range []string{"on", "at", "to", "with", "in", "from", "about", "under", "into", "onto"} {
		v.Prepositions[w] = struct{}{}
	}
	for _, w := range []string{"it", "them"} {
		v.Pronouns[w] = struct{}{}
	}
	return v
}

// ItemDef is the minimal item description the vocabulary builder needs:
// just the surface-word attributes, not the full runtime Item.
type ItemDef struct {
	ID         types.ItemID
	Name       string
	Synonyms   []string
	Adjectives []string
}

// VerbDef is the minimal verb description the builder needs.
type VerbDef struct {
	ID       types.VerbID
	Synonyms []string
	Rules    []types.SyntaxRule
}

// AddItem installs an item's name and synonyms into Items, and its
// adjectives into Adjectives — spec.md §4.1's build rule.
func (v *Vocabulary) AddItem(def ItemDef) {
	words := append([]string{def.Name}, def.Synonyms...)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if v.Items[w] == nil {
			v.Items[w] = map[types.ItemID]struct{}{}
		}
		v.Items[w][def.ID] = struct{}{}
	}
	for _, a := range def.Adjectives {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if v.Adjectives[a] == nil {
			v.Adjectives[a] = map[types.ItemID]struct{}{}
		}
		v.Adjectives[a][def.ID] = struct{}{}
	}
}

// AddVerb installs a verb's id and synonyms into Verbs, and appends its
// syntax rules.
func (v *Vocabulary) AddVerb(def VerbDef) {
	words := append([]string{string(def.ID)}, def.Synonyms...)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		v.Verbs[w] = def.ID
	}
	v.SyntaxRules[def.ID] = append(v.SyntaxRules[def.ID], def.Rules...)
}

// IsDirectionWord reports whether a word names a direction, resolving the
// "in"/"on" direction-vs-preposition conflict from spec.md §4.1: direction
// interpretation wins only when the preceding token is a motion verb.
func (v *Vocabulary) IsDirectionWord(word string, precededByMotionVerb bool) (types.DirectionID, bool) {
	dir, ok := v.Directions[word]
	if !ok {
		return "", false
	}
	if _, isAlsoPreposition := v.Prepositions[word]; isAlsoPreposition && !precededByMotionVerb {
		return "", false
	}
	return dir, true
}

// LookupItems returns the set of item IDs a noun word can refer to.
func (v *Vocabulary) LookupItems(noun string) map[types.ItemID]struct{} {
	return v.Items[strings.ToLower(noun)]
}

// LookupAdjective returns the set of item IDs an adjective word qualifies.
func (v *Vocabulary) LookupAdjective(adj string) map[types.ItemID]struct{} {
	return v.Adjectives[strings.ToLower(adj)]
}

// LookupVerb resolves a surface word (or multi-word phrase already joined
// with a single space, e.g. "take off") to a VerbID.
func (v *Vocabulary) LookupVerb(word string) (types.VerbID, bool) {
	id, ok := v.Verbs[strings.ToLower(word)]
	return id, ok
}

func (v *Vocabulary) IsNoise(word string) bool {
	_, ok := v.NoiseWords[strings.ToLower(word)]
	return ok
}

func (v *Vocabulary) IsPreposition(word string) bool {
	_, ok := v.Prepositions[strings.ToLower(word)]
	return ok
}

func (v *Vocabulary) IsPronoun(word string) bool {
	_, ok := v.Pronouns[strings.ToLower(word)]
	return ok
}
