package blueprint

import (
	"fmt"

	"github.com/nathoo/questcore/engine/state"
	"github.com/nathoo/questcore/types"
)

// validate cross-checks every reference a compiled Blueprint makes against
// the locations and items it actually defines: exits, required keys, item
// parents, and the start location.
func validate(bp *state.Blueprint) error {
	if _, ok := bp.Locations[bp.InitialLocation]; !ok {
		return &UnknownLocationReference{From: "Game.start", Location: string(bp.InitialLocation)}
	}

	for id, loc := range bp.Locations {
		for dir, exit := range loc.Exits {
			from := fmt.Sprintf("location %s exit %s", id, dir)
			if _, ok := bp.Locations[exit.Destination]; !ok {
				return &UnknownLocationReference{From: from, Location: string(exit.Destination)}
			}
			if exit.HasRequiredKey {
				if _, ok := bp.Items[exit.RequiredKey]; !ok {
					return &UnknownItemReference{From: from, Item: string(exit.RequiredKey)}
				}
			}
		}
	}

	for id, item := range bp.Items {
		parent := item.Attributes["parent"]
		if parent.Kind != types.AttrParent {
			continue
		}
		from := fmt.Sprintf("item %s parent", id)
		switch parent.Parent.Kind {
		case types.ParentLocation:
			if _, ok := bp.Locations[parent.Parent.Location]; !ok {
				return &UnknownLocationReference{From: from, Location: string(parent.Parent.Location)}
			}
		case types.ParentItem:
			if _, ok := bp.Items[parent.Parent.Item]; !ok {
				return &UnknownItemReference{From: from, Item: string(parent.Parent.Item)}
			}
		}
	}

	return nil
}
