package game

import "github.com/Maxim12412/Monopolista/internal/model"

// Rent computes the rent due for landing on a tile, given the dice sum that
// produced the arrival. Pure function of board state; zero for unowned or
// self-owned tiles.
func Rent(board []model.Tile, tile *model.Tile, diceSum int) int {
	if tile.OwnerID == "" {
		return 0
	}
	switch tile.Kind {
	case model.TileProperty:
		owned := countOwnedInGroup(board, tile.Group, tile.OwnerID)
		idx := clamp(owned, 1, len(tile.Rent)) - 1
		return tile.Rent[idx]
	case model.TileStation:
		owned := countOwnedKind(board, model.TileStation, tile.OwnerID)
		return tile.BaseRent << (clamp(owned, 1, 4) - 1)
	case model.TileUtility:
		owned := countOwnedKind(board, model.TileUtility, tile.OwnerID)
		if owned >= 2 {
			return 10 * diceSum
		}
		return 4 * diceSum
	}
	return 0
}

func countOwnedInGroup(board []model.Tile, group, ownerID string) int {
	n := 0
	for i := range board {
		if board[i].Group == group && board[i].OwnerID == ownerID {
			n++
		}
	}
	return n
}

func countOwnedKind(board []model.Tile, kind model.TileKind, ownerID string) int {
	n := 0
	for i := range board {
		if board[i].Kind == kind && board[i].OwnerID == ownerID {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
