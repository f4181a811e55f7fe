package vocab

import (
	"testing"

	"github.com/nathoo/questcore/types"
)

func TestNewInstallsStandardDirections(t *testing.T) {
	v := New()
	if dir, ok := v.Directions["ne"]; !ok || dir != "northeast" {
		t.Fatalf("expected ne -> northeast, got %v, %v", dir, ok)
	}
}

func TestAddItemInstallsNameSynonymsAndAdjectives(t *testing.T) {
	v := New()
	v.AddItem(ItemDef{ID: "rusty_key", Name: "key", Synonyms: []string{"latchkey"}, Adjectives: []string{"rusty", "small"}})

	if _, ok := v.LookupItems("key")["rusty_key"]; !ok {
		t.Fatal("expected name to resolve to item")
	}
	if _, ok := v.LookupItems("latchkey")["rusty_key"]; !ok {
		t.Fatal("expected synonym to resolve to item")
	}
	if _, ok := v.LookupAdjective("rusty")["rusty_key"]; !ok {
		t.Fatal("expected adjective to resolve to item")
	}
}

func TestAddVerbInstallsSynonymsAndRules(t *testing.T) {
	v := New()
	rule := types.SyntaxRule{Pattern: []types.Slot{{Kind: types.SlotVerb}, {Kind: types.SlotDirectObject}}}
	v.AddVerb(VerbDef{ID: "take", Synonyms: []string{"get", "grab"}, Rules: []types.SyntaxRule{rule}})

	if id, ok := v.LookupVerb("grab"); !ok || id != "take" {
		t.Fatalf("expected grab -> take, got %v, %v", id, ok)
	}
	if len(v.SyntaxRules["take"]) != 1 {
		t.Fatalf("expected one syntax rule installed, got %d", len(v.SyntaxRules["take"]))
	}
}

func TestIsDirectionWordPrefersDirectionAfterMotionVerb(t *testing.T) {
	v := New()
	if _, ok := v.IsDirectionWord("in", false); ok {
		t.Fatal("expected bare preposition 'in' to not resolve as a direction without a motion verb")
	}
	if dir, ok := v.IsDirectionWord("in", true); !ok || dir != "in" {
		t.Fatalf("expected 'in' to resolve as a direction after a motion verb, got %v, %v", dir, ok)
	}
}

func TestIsNoisePrepositionPronoun(t *testing.T) {
	v := New()
	if !v.IsNoise("the") {
		t.Fatal("expected 'the' to be a noise word")
	}
	if !v.IsPreposition("in") {
		t.Fatal("expected 'in' to be a preposition")
	}
	if !v.IsPronoun("it") {
		t.Fatal("expected 'it' to be a pronoun")
	}
}
