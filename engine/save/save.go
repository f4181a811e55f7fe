// Package save implements the versioned save-file format (spec.md §6): a
// JSON record of every field needed to resume a game exactly where it left
// off, including RNG position for deterministic replay.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/questcore/types"
)

// SchemaVersion is the current engine schema version (u32). Bump it when
// SaveData's shape changes in a way that breaks old saves.
const SchemaVersion = 1

// SaveData is the JSON-serializable save format (spec.md §6's "save file
// content (logical)"): schema version, game id, turn count, player record,
// item map, location map, globals, active fuses + remaining turns, active
// daemons, pronoun bindings, score, and RNG seed/position.
type SaveData struct {
	SchemaVersion uint32                                    `json:"schemaVersion"`
	GameID        string                                    `json:"gameId"`
	Turn          int                                       `json:"turn"`
	Player        types.Player                              `json:"player"`
	Items         map[types.ItemID]types.Item               `json:"items"`
	Locations     map[types.LocationID]types.Location       `json:"locations"`
	Globals       map[string]types.AttributeValue           `json:"globals"`
	ActiveFuses   map[types.FuseID]int                       `json:"activeFuses"`
	ActiveDaemons map[types.DaemonID]struct{}                `json:"activeDaemons"`
	MaxScore      int                                       `json:"maxScore"`
	RNGSeed       int64                                     `json:"rngSeed"`
	RNGPosition   int64                                     `json:"rngPosition"`
	Verbose       bool                                      `json:"verbose"`
	Visited       map[types.LocationID]struct{}              `json:"visited"`
}

// CorruptSave is returned when a save file fails to parse or is missing a
// required field.
type CorruptSave struct{ Reason string }

func (e *CorruptSave) Error() string { return fmt.Sprintf("corrupt save: %s", e.Reason) }

// VersionMismatch is returned when a save file's schema version is newer
// than this engine understands.
type VersionMismatch struct{ Found, Want uint32 }

func (e *VersionMismatch) Error() string {
	return fmt.Sprintf("save schema version %d is incompatible with engine version %d", e.Found, e.Want)
}

// FileNotFound wraps a missing save file path.
type FileNotFound struct{ Path string }

func (e *FileNotFound) Error() string { return fmt.Sprintf("save file not found: %s", e.Path) }

// Marshal serializes a GameState into save-file bytes.
func Marshal(gameID string, s *types.GameState) ([]byte, error) {
	data := SaveData{
		SchemaVersion: SchemaVersion,
		GameID:        gameID,
		Turn:          s.Turn,
		Player:        s.Player,
		Items:         s.Items,
		Locations:     s.Locations,
		Globals:       s.Globals,
		ActiveFuses:   s.ActiveFuses,
		ActiveDaemons: s.ActiveDaemons,
		MaxScore:      s.MaxScore,
		RNGSeed:       s.RNGSeed,
		RNGPosition:   s.RNGPosition,
		Verbose:       s.Verbose,
		Visited:       s.Visited,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Unmarshal parses save-file bytes, rejecting corrupt data and schema
// versions this engine cannot read.
func Unmarshal(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, &CorruptSave{Reason: err.Error()}
	}
	if sd.GameID == "" {
		return nil, &CorruptSave{Reason: "missing gameId"}
	}
	if sd.SchemaVersion > SchemaVersion {
		return nil, &VersionMismatch{Found: sd.SchemaVersion, Want: SchemaVersion}
	}
	if sd.Items == nil {
		sd.Items = map[types.ItemID]types.Item{}
	}
	if sd.Locations == nil {
		sd.Locations = map[types.LocationID]types.Location{}
	}
	if sd.Globals == nil {
		sd.Globals = map[string]types.AttributeValue{}
	}
	if sd.ActiveFuses == nil {
		sd.ActiveFuses = map[types.FuseID]int{}
	}
	if sd.ActiveDaemons == nil {
		sd.ActiveDaemons = map[types.DaemonID]struct{}{}
	}
	if sd.Visited == nil {
		sd.Visited = map[types.LocationID]struct{}{}
	}
	if sd.Player.LastMentionedItems == nil {
		sd.Player.LastMentionedItems = map[types.ItemID]struct{}{}
	}
	return &sd, nil
}

// Restore rebuilds a GameState from loaded save data.
func Restore(sd *SaveData) *types.GameState {
	return &types.GameState{
		Items:         sd.Items,
		Locations:     sd.Locations,
		Player:        sd.Player,
		Globals:       sd.Globals,
		ActiveFuses:   sd.ActiveFuses,
		ActiveDaemons: sd.ActiveDaemons,
		Turn:          sd.Turn,
		RNGSeed:       sd.RNGSeed,
		RNGPosition:   sd.RNGPosition,
		MaxScore:      sd.MaxScore,
		Verbose:       sd.Verbose,
		Visited:       sd.Visited,
	}
}
