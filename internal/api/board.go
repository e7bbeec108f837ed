package api

import (
	"strings"

	"github.com/samber/oops"
)

// Board is a post category exposed by the community backend.
type Board string

const (
	BoardAnnouncement Board = "announcement"
	BoardQnA          Board = "qna"
	BoardActivity     Board = "activity"
)

func Boards() []Board {
	return []Board{BoardAnnouncement, BoardQnA, BoardActivity}
}

// Path is the collection endpoint of the board.
func (b Board) Path() string {
	switch b {
	case BoardQnA:
		return "/QNA"
	case BoardActivity:
		return "/activity"
	default:
		return "/announcement"
	}
}

func ParseBoard(name string) (Board, error) {
	switch Board(strings.ToLower(strings.TrimSpace(name))) {
	case BoardAnnouncement:
		return BoardAnnouncement, nil
	case BoardQnA:
		return BoardQnA, nil
	case BoardActivity:
		return BoardActivity, nil
	default:
		return "", oops.
			Code("UNKNOWN_BOARD").
			With("board", name).
			Hint("Supported boards: announcement, qna, activity").
			Errorf("unknown board %q", name)
	}
}
