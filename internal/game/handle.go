package game

// TileHandle and PawnHandle are stable indices into a State's tile/pawn
// arenas. They replace the raw-pointer graph of the original C++ Tile/Pawn
// model (spec.md 9 DESIGN NOTES): a Tile owns an optional PawnHandle, a Pawn
// holds a non-owning TileHandle back-reference, and a Tile's RenderPawn is a
// non-owning PawnHandle that DestroyPawn clears. Pawn slots are never reused.
type TileHandle int

type PawnHandle int

// InvalidHandle marks the absence of a reference; the zero value of a
// handle would otherwise alias the first arena slot.
const InvalidHandle = -1
