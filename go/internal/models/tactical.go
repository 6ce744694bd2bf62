package models

// DiscKind distinguishes the markers placed on the tactics board.
type DiscKind string

const (
	DiscPlayer   DiscKind = "player"
	DiscOpponent DiscKind = "opponent"
	DiscBall     DiscKind = "ball"
)

// Point is a normalized board coordinate in [0,1] on both axes.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TacticalDisc is one draggable marker on the tactics board.
type TacticalDisc struct {
	ID   string   `json:"id"`
	Kind DiscKind `json:"kind"`
	Pos  Point    `json:"pos"`
}

// TacticalState holds the tactics-board layout: disc positions and
// freehand drawing strokes. It changes at drag frequency, so it is
// persisted on the slowest auto-save tier and carried in its own undo
// history.
type TacticalState struct {
	Discs    []TacticalDisc `json:"discs"`
	Drawings [][]Point      `json:"drawings"`
}

// Clone returns a deep copy of the tactical state.
func (t TacticalState) Clone() TacticalState {
	out := TacticalState{
		Discs: append([]TacticalDisc(nil), t.Discs...),
	}
	if t.Drawings != nil {
		out.Drawings = make([][]Point, len(t.Drawings))
		for i, stroke := range t.Drawings {
			out.Drawings[i] = append([]Point(nil), stroke...)
		}
	}
	return out
}
