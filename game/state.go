package game

// State is the round state machine.
type State uint8

const (
	// StateReady is the pre-shot phase: the level is live for drawing and
	// erasing but gravity has not been released on the balls yet in the
	// player's mind; physics still runs, so standing props settle.
	StateReady State = iota
	// StatePlaying begins with the first committed stroke.
	StatePlaying
	// StateWon latches when the two balls touch during play.
	StateWon
	// StateLost latches when a ball leaves the field or hits a laser.
	StateLost
	// StateMenu pauses the simulation behind an overlay.
	StateMenu
	// StateEdit pauses the simulation for level adjustments.
	StateEdit
)

var stateNames = [...]string{"ready", "playing", "won", "lost", "menu", "edit"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// terminal reports whether the round has ended.
func (s State) terminal() bool {
	return s == StateWon || s == StateLost
}

// stepping reports whether fixed-step simulation runs in this state.
func (s State) stepping() bool {
	return s == StateReady || s == StatePlaying
}
