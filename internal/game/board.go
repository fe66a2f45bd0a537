package game

import "github.com/Maxim12412/Monopolista/internal/model"

const (
	BoardSize    = 40
	JailTile     = 10
	PassGoBonus  = 200
	JailFine     = 50
	StartBalance = 1500
)

// boardTemplate is the 40-tile track. Per-room boards are cloned from it at
// room creation and game (re)start; templates are never mutated.
var boardTemplate = []model.Tile{
	{ID: 0, Kind: model.TileStart, Name: "GO"},
	{ID: 1, Kind: model.TileProperty, Name: "Old Kent Road", Price: 60, Group: "brown", GroupSize: 2, Rent: []int{2, 4}},
	{ID: 2, Kind: model.TileChest, Name: "Community Chest"},
	{ID: 3, Kind: model.TileProperty, Name: "Whitechapel Road", Price: 60, Group: "brown", GroupSize: 2, Rent: []int{4, 8}},
	{ID: 4, Kind: model.TileTax, Name: "Income Tax", Amount: 200},
	{ID: 5, Kind: model.TileStation, Name: "Kings Cross Station", Price: 200, BaseRent: 25},
	{ID: 6, Kind: model.TileProperty, Name: "The Angel Islington", Price: 100, Group: "lightblue", GroupSize: 3, Rent: []int{6, 12, 18}},
	{ID: 7, Kind: model.TileChance, Name: "Chance"},
	{ID: 8, Kind: model.TileProperty, Name: "Euston Road", Price: 100, Group: "lightblue", GroupSize: 3, Rent: []int{6, 12, 18}},
	{ID: 9, Kind: model.TileProperty, Name: "Pentonville Road", Price: 120, Group: "lightblue", GroupSize: 3, Rent: []int{8, 16, 24}},
	{ID: 10, Kind: model.TileJail, Name: "Jail"},
	{ID: 11, Kind: model.TileProperty, Name: "Pall Mall", Price: 140, Group: "pink", GroupSize: 3, Rent: []int{10, 20, 30}},
	{ID: 12, Kind: model.TileUtility, Name: "Electric Company", Price: 150},
	{ID: 13, Kind: model.TileProperty, Name: "Whitehall", Price: 140, Group: "pink", GroupSize: 3, Rent: []int{10, 20, 30}},
	{ID: 14, Kind: model.TileProperty, Name: "Northumberland Avenue", Price: 160, Group: "pink", GroupSize: 3, Rent: []int{12, 24, 36}},
	{ID: 15, Kind: model.TileStation, Name: "Marylebone Station", Price: 200, BaseRent: 25},
	{ID: 16, Kind: model.TileProperty, Name: "Bow Street", Price: 180, Group: "orange", GroupSize: 3, Rent: []int{14, 28, 42}},
	{ID: 17, Kind: model.TileChest, Name: "Community Chest"},
	{ID: 18, Kind: model.TileProperty, Name: "Marlborough Street", Price: 180, Group: "orange", GroupSize: 3, Rent: []int{14, 28, 42}},
	{ID: 19, Kind: model.TileProperty, Name: "Vine Street", Price: 200, Group: "orange", GroupSize: 3, Rent: []int{16, 32, 48}},
	{ID: 20, Kind: model.TileParking, Name: "Free Parking"},
	{ID: 21, Kind: model.TileProperty, Name: "Strand", Price: 220, Group: "red", GroupSize: 3, Rent: []int{18, 36, 54}},
	{ID: 22, Kind: model.TileChance, Name: "Chance"},
	{ID: 23, Kind: model.TileProperty, Name: "Fleet Street", Price: 220, Group: "red", GroupSize: 3, Rent: []int{18, 36, 54}},
	{ID: 24, Kind: model.TileProperty, Name: "Trafalgar Square", Price: 240, Group: "red", GroupSize: 3, Rent: []int{20, 40, 60}},
	{ID: 25, Kind: model.TileStation, Name: "Fenchurch St Station", Price: 200, BaseRent: 25},
	{ID: 26, Kind: model.TileProperty, Name: "Leicester Square", Price: 260, Group: "yellow", GroupSize: 3, Rent: []int{22, 44, 66}},
	{ID: 27, Kind: model.TileProperty, Name: "Coventry Street", Price: 260, Group: "yellow", GroupSize: 3, Rent: []int{22, 44, 66}},
	{ID: 28, Kind: model.TileUtility, Name: "Water Works", Price: 150},
	{ID: 29, Kind: model.TileProperty, Name: "Piccadilly", Price: 280, Group: "yellow", GroupSize: 3, Rent: []int{24, 48, 72}},
	{ID: 30, Kind: model.TileGoToJail, Name: "Go To Jail"},
	{ID: 31, Kind: model.TileProperty, Name: "Regent Street", Price: 300, Group: "green", GroupSize: 3, Rent: []int{26, 52, 78}},
	{ID: 32, Kind: model.TileProperty, Name: "Oxford Street", Price: 300, Group: "green", GroupSize: 3, Rent: []int{26, 52, 78}},
	{ID: 33, Kind: model.TileChest, Name: "Community Chest"},
	{ID: 34, Kind: model.TileProperty, Name: "Bond Street", Price: 320, Group: "green", GroupSize: 3, Rent: []int{28, 56, 84}},
	{ID: 35, Kind: model.TileStation, Name: "Liverpool St Station", Price: 200, BaseRent: 25},
	{ID: 36, Kind: model.TileChance, Name: "Chance"},
	{ID: 37, Kind: model.TileProperty, Name: "Park Lane", Price: 350, Group: "darkblue", GroupSize: 2, Rent: []int{35, 70}},
	{ID: 38, Kind: model.TileTax, Name: "Super Tax", Amount: 100},
	{ID: 39, Kind: model.TileProperty, Name: "Mayfair", Price: 400, Group: "darkblue", GroupSize: 2, Rent: []int{50, 100}},
}

// NewBoard returns a fresh per-room copy of the board template.
func NewBoard() []model.Tile {
	board := make([]model.Tile, len(boardTemplate))
	copy(board, boardTemplate)
	return board
}
