package models

// Face is one tile face in an arrangement
type Face string

const (
	// FaceWinning is the red "zhong" tile
	FaceWinning Face = "zhong"
	// FaceBlank is the blank "baiban" tile
	FaceBlank Face = "blank"
)

// ArrangementSize is the number of face-down tiles offered per draw
const ArrangementSize = 3

// Arrangement is the concrete winning/blank layout for one draw or round
type Arrangement [ArrangementSize]Face

// WinningCount returns how many tiles in the arrangement are winning
func (a Arrangement) WinningCount() int {
	n := 0
	for _, f := range a {
		if f == FaceWinning {
			n++
		}
	}
	return n
}

// WinningIndex returns the first winning position, or -1 when all tiles are blank
func (a Arrangement) WinningIndex() int {
	for i, f := range a {
		if f == FaceWinning {
			return i
		}
	}
	return -1
}

// Faces returns the arrangement as a slice for JSON rendering
func (a Arrangement) Faces() []Face {
	return a[:]
}
