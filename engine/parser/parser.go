// Package parser implements the two-stage command parser (spec.md §4.2):
// tokenize, strip noise words, match a verb and a syntax rule, then resolve
// each object slot's noun phrase against the current scope. Intentionally
// dumb: no NLP, just vocabulary-driven pattern matching.
package parser

import (
	"sort"
	"strings"

	"github.com/nathoo/questcore/engine/actionerr"
	"github.com/nathoo/questcore/engine/parseerr"
	"github.com/nathoo/questcore/engine/scope"
	"github.com/nathoo/questcore/engine/state"
	"github.com/nathoo/questcore/engine/vocab"
	"github.com/nathoo/questcore/types"
)

// Parse converts a raw command line into a fully resolved Command, or the
// most informative parseerr/actionerr failure (spec.md §4.2 step 4).
func Parse(input string, v *vocab.Vocabulary, s *types.GameState, sc scope.Scope) (types.Command, error) {
	tokens := tokenize(input)
	if len(tokens) == 0 {
		return types.Command{}, &parseerr.WrongSyntax{Verb: ""}
	}
	tokens = stripNoise(tokens, v)
	if len(tokens) == 0 {
		return types.Command{}, &parseerr.WrongSyntax{Verb: ""}
	}

	// Bare direction shortcut: "north" alone means "go north".
	if len(tokens) == 1 {
		if dir, ok := v.IsDirectionWord(tokens[0], true); ok {
			return types.Command{Verb: "go", HasDirection: true, Direction: dir, RawInput: input}, nil
		}
	}

	verbID, consumed, ok := lookupVerbPhrase(tokens, v)
	if !ok {
		return types.Command{}, &parseerr.UnknownVerb{Word: tokens[0]}
	}
	rest := tokens[consumed:]

	rules := v.SyntaxRules[verbID]
	if len(rules) == 0 {
		if len(rest) == 0 {
			return types.Command{Verb: verbID, RawInput: input}, nil
		}
		return types.Command{}, &parseerr.WrongSyntax{Verb: string(verbID)}
	}

	var best error
	for _, rule := range rules {
		cmd, err := bindRule(verbID, rule, rest, v, s, sc, input)
		if err == nil {
			return cmd, nil
		}
		best = parseerr.MostInformative(best, err)
	}
	if best == nil {
		best = &parseerr.WrongSyntax{Verb: string(verbID)}
	}
	return types.Command{}, best
}

func tokenize(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	raw := strings.Fields(strings.ToLower(input))
	tokens := make([]string, 0, len(raw))
	for _, w := range raw {
		w = strings.Trim(w, ".,!?;:")
		if w != "" {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

func stripNoise(tokens []string, v *vocab.Vocabulary) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if v.IsNoise(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// lookupVerbPhrase tries the longest multi-word verb phrase first (e.g.
// "take off" before "take"), per spec.md §4.1.
func lookupVerbPhrase(tokens []string, v *vocab.Vocabulary) (types.VerbID, int, bool) {
	if len(tokens) >= 2 {
		if id, ok := v.LookupVerb(tokens[0] + " " + tokens[1]); ok {
			return id, 2, true
		}
	}
	if id, ok := v.LookupVerb(tokens[0]); ok {
		return id, 1, true
	}
	return "", 0, false
}

// bindRule attempts to bind one syntax rule's pattern against the tokens
// following the verb, resolving any object slots as it goes.
func bindRule(verb types.VerbID, rule types.SyntaxRule, tokens []string, v *vocab.Vocabulary, s *types.GameState, sc scope.Scope, raw string) (types.Command, error) {
	cmd := types.Command{Verb: verb, Rule: rule, HasRule: true, RawInput: raw}
	idx := 0

	for i, slot := range rule.Pattern {
		switch slot.Kind {
		case types.SlotVerb:
			continue

		case types.SlotPreposition, types.SlotParticle:
			if idx >= len(tokens) || tokens[idx] != slot.Word {
				return types.Command{}, &parseerr.WrongSyntax{Verb: string(verb)}
			}
			if slot.Kind == types.SlotPreposition {
				cmd.Preposition = slot.Word
			}
			idx++

		case types.SlotDirection:
			if idx >= len(tokens) {
				return types.Command{}, &parseerr.WrongSyntax{Verb: string(verb)}
			}
			dir, ok := v.IsDirectionWord(tokens[idx], true)
			if !ok {
				return types.Command{}, &parseerr.WrongSyntax{Verb: string(verb)}
			}
			cmd.Direction = dir
			cmd.HasDirection = true
			idx++

		case types.SlotDirectObject, types.SlotIndirectObject:
			end := boundaryFor(rule.Pattern, i, tokens, idx)
			if end <= idx {
				return types.Command{}, &parseerr.WrongSyntax{Verb: string(verb)}
			}
			if rule.RequiresLight && sc.IsDark {
				return types.Command{}, &actionerr.CannotSeeInDark{}
			}
			conds := rule.DirectObjectConditions
			if slot.Kind == types.SlotIndirectObject {
				conds = rule.IndirectObjectConditions
			}
			id, err := resolveNounPhrase(tokens[idx:end], conds, v, s, sc)
			if err != nil {
				return types.Command{}, err
			}
			if slot.Kind == types.SlotDirectObject {
				cmd.DirectObject = id
				cmd.HasDirect = true
			} else {
				cmd.IndirectObject = id
				cmd.HasIndirect = true
			}
			idx = end
		}
	}

	if idx != len(tokens) {
		return types.Command{}, &parseerr.WrongSyntax{Verb: string(verb)}
	}
	return cmd, nil
}

// boundaryFor finds where a noun phrase slot ends: at the next required
// literal word (preposition/particle) in the pattern, or at the end of the
// remaining tokens if no such slot follows.
func boundaryFor(pattern []types.Slot, i int, tokens []string, idx int) int {
	for j := i + 1; j < len(pattern); j++ {
		switch pattern[j].Kind {
		case types.SlotPreposition, types.SlotParticle:
			for k := idx; k < len(tokens); k++ {
				if tokens[k] == pattern[j].Word {
					return k
				}
			}
			return len(tokens)
		case types.SlotDirectObject, types.SlotIndirectObject:
			return len(tokens)
		}
	}
	return len(tokens)
}

// resolveNounPhrase resolves a slot's words — a pronoun, or adjectives
// followed by a noun — to a single item, honoring tiered disambiguation and
// the slot's object conditions (spec.md §4.2, §4.3).
func resolveNounPhrase(words []string, conds []types.Cond, v *vocab.Vocabulary, s *types.GameState, sc scope.Scope) (types.ItemID, error) {
	if len(words) == 1 && v.IsPronoun(words[0]) {
		return resolvePronoun(words[0], s)
	}

	noun := words[len(words)-1]
	adjectives := words[:len(words)-1]

	set := v.LookupItems(noun)
	if len(set) == 0 {
		return "", &parseerr.UnknownNoun{Word: noun}
	}
	candidates := cloneSet(set)
	for _, adj := range adjectives {
		candidates = intersect(candidates, v.LookupAdjective(adj))
		if len(candidates) == 0 {
			return "", &parseerr.ObjectNotInScope{Noun: noun}
		}
	}

	inScope := map[types.ItemID]struct{}{}
	for id := range candidates {
		if sc.Contains(id) {
			inScope[id] = struct{}{}
		}
	}
	if len(inScope) == 0 {
		return "", &parseerr.ObjectNotInScope{Noun: noun}
	}

	chosen, err := pickByTier(inScope, noun, s)
	if err != nil {
		return "", err
	}
	if failed := firstFailedCondition(s, chosen, conds); failed != nil {
		return "", &parseerr.ObjectConditionFailed{Noun: noun, Cond: *failed}
	}
	return chosen, nil
}

func resolvePronoun(word string, s *types.GameState) (types.ItemID, error) {
	if word == "it" {
		if !s.Player.HasLastMentioned {
			return "", &parseerr.NoAntecedent{Pronoun: word}
		}
		return s.Player.LastMentionedItem, nil
	}
	// "them": Command carries one object slot per noun phrase, so a plural
	// antecedent set resolves to its lexicographically first member.
	if len(s.Player.LastMentionedItems) == 0 {
		return "", &parseerr.NoAntecedent{Pronoun: word}
	}
	ids := make([]types.ItemID, 0, len(s.Player.LastMentionedItems))
	for id := range s.Player.LastMentionedItems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[0], nil
}

// pickByTier picks among candidates using spec.md §4.2's tiering: held beats
// visible-in-location beats inside-a-container. Within a tier, an exact name
// match beats a synonym match; otherwise a multi-member tier is ambiguous.
func pickByTier(candidates map[types.ItemID]struct{}, noun string, s *types.GameState) (types.ItemID, error) {
	var tiers [3][]types.ItemID
	loc := s.Player.Location
	for id := range candidates {
		p := state.Parent(s, id)
		switch {
		case p.Kind == types.ParentPlayer:
			tiers[0] = append(tiers[0], id)
		case p.Kind == types.ParentLocation && p.Location == loc:
			tiers[1] = append(tiers[1], id)
		default:
			tiers[2] = append(tiers[2], id)
		}
	}

	for _, group := range tiers {
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })
		if len(group) == 1 {
			return group[0], nil
		}
		var exact []types.ItemID
		for _, id := range group {
			if strings.EqualFold(state.ItemName(s, id), noun) {
				exact = append(exact, id)
			}
		}
		if len(exact) == 1 {
			return exact[0], nil
		}
		if len(exact) > 1 {
			return "", &parseerr.AmbiguousObject{Noun: noun, Candidates: exact}
		}
		return "", &parseerr.AmbiguousObject{Noun: noun, Candidates: group}
	}
	return "", &parseerr.ObjectNotInScope{Noun: noun}
}

func firstFailedCondition(s *types.GameState, id types.ItemID, conds []types.Cond) *types.Cond {
	for _, c := range conds {
		ok := true
		switch c {
		case types.CondHeld:
			ok = state.Parent(s, id).Kind == types.ParentPlayer
		case types.CondWorn:
			ok = state.HasFlag(s, id, "worn")
		case types.CondInScope:
			ok = true
		case types.CondIsContainer:
			ok = state.HasFlag(s, id, "container")
		case types.CondIsSurface:
			ok = state.HasFlag(s, id, "surface")
		case types.CondIsTakable:
			ok = state.HasFlag(s, id, "takable")
		case types.CondIsWeapon:
			ok = state.HasFlag(s, id, "weapon")
		}
		if !ok {
			failed := c
			return &failed
		}
	}
	return nil
}

func cloneSet(m map[types.ItemID]struct{}) map[types.ItemID]struct{} {
	out := make(map[types.ItemID]struct{}, len(m))
	for id := range m {
		out[id] = struct{}{}
	}
	return out
}

func intersect(a, b map[types.ItemID]struct{}) map[types.ItemID]struct{} {
	out := map[types.ItemID]struct{}{}
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}
