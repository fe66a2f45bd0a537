package model

type TileKind string

const (
	TileStart    TileKind = "start"
	TileProperty TileKind = "property"
	TileStation  TileKind = "station"
	TileUtility  TileKind = "utility"
	TileTax      TileKind = "tax"
	TileChance   TileKind = "chance"
	TileChest    TileKind = "chest"
	TileJail     TileKind = "jail"
	TileGoToJail TileKind = "go_to_jail"
	TileParking  TileKind = "parking"
)

// Tile is one board square. Template fields are fixed at room creation;
// OwnerID is the only mutable field (empty string means the bank owns it).
type Tile struct {
	ID        int      `json:"id" bson:"id"`
	Kind      TileKind `json:"kind" bson:"kind"`
	Name      string   `json:"name" bson:"name"`
	Price     int      `json:"price,omitempty" bson:"price,omitempty"`
	Rent      []int    `json:"rent,omitempty" bson:"rent,omitempty"` // indexed by tiles of the group owned - 1
	BaseRent  int      `json:"baseRent,omitempty" bson:"baseRent,omitempty"`
	Group     string   `json:"group,omitempty" bson:"group,omitempty"`
	GroupSize int      `json:"groupSize,omitempty" bson:"groupSize,omitempty"`
	Amount    int      `json:"amount,omitempty" bson:"amount,omitempty"` // tax tiles
	OwnerID   string   `json:"ownerId,omitempty" bson:"ownerId,omitempty"`
}

// Buyable reports whether the tile kind can be owned by a player.
func (t *Tile) Buyable() bool {
	return t.Kind == TileProperty || t.Kind == TileStation || t.Kind == TileUtility
}
