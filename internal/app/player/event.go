package player

// ChangeType identifies which part of the state a mutation touched.
type ChangeType int

const (
	ChangeEpisodeList ChangeType = iota // Episode list replaced or cleared
	ChangeIndex                         // Current index moved (next/previous)
	ChangePlaying                       // Playing flag changed
	ChangeLooping                       // Looping flag changed
	ChangeShuffling                     // Shuffling flag changed
)

// String returns the string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeEpisodeList:
		return "episode_list"
	case ChangeIndex:
		return "index"
	case ChangePlaying:
		return "playing"
	case ChangeLooping:
		return "looping"
	case ChangeShuffling:
		return "shuffling"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers after every state change.
type Change struct {
	Type  ChangeType
	State State // State after the change
}
