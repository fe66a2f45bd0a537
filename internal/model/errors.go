package model

// Reject is a validation rejection: a malformed or out-of-turn intent. It is
// reported to the acting connection with a machine-readable code and never
// mutates state.
type Reject struct {
	Code string
}

func (e *Reject) Error() string { return e.Code }

var (
	ErrRoomNotFound      = &Reject{"room_not_found"}
	ErrRoomFull          = &Reject{"room_full"}
	ErrNicknameTaken     = &Reject{"nickname_taken"}
	ErrGameStarted       = &Reject{"game_already_started"}
	ErrGameNotStarted    = &Reject{"game_not_started"}
	ErrGameOver          = &Reject{"game_over"}
	ErrNotHost           = &Reject{"not_host"}
	ErrNotAllReady       = &Reject{"not_all_ready"}
	ErrTooFewPlayers     = &Reject{"too_few_players"}
	ErrNotYourTurn       = &Reject{"not_your_turn"}
	ErrWrongPhase        = &Reject{"wrong_phase"}
	ErrNoPendingAction   = &Reject{"no_pending_action"}
	ErrInsufficientFunds = &Reject{"insufficient_funds"}
	ErrTileOwned         = &Reject{"tile_already_owned"}
	ErrBankruptActor     = &Reject{"bankrupt"}
	ErrUnknownPlayer     = &Reject{"unknown_player"}
	ErrUnknownIntent     = &Reject{"unknown_intent"}
	ErrInvalidNickname   = &Reject{"invalid_nickname"}
	ErrBadPayload        = &Reject{"bad_payload"}
)
