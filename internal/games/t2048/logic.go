package t2048

// Direction represents a move direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// DefaultSize is the classic board dimension.
const DefaultSize = 4

// Board is a square grid of tile values; 0 is an empty cell.
type Board [][]int

// Cell addresses one board position.
type Cell struct{ X, Y int }

// NewBoard returns an empty size x size board.
func NewBoard(size int) Board {
	if size < 2 {
		size = DefaultSize
	}
	b := make(Board, size)
	for y := range b {
		b[y] = make([]int, size)
	}
	return b
}

// Size returns the board dimension.
func (b Board) Size() int { return len(b) }

// Clone returns a deep copy.
func (b Board) Clone() Board {
	c := make(Board, len(b))
	for y := range b {
		c[y] = append([]int(nil), b[y]...)
	}
	return c
}

// slideLine slides and merges one line toward index 0. A tile merges at most
// once per move. Returns the new line and the score gained from merges.
func slideLine(line []int) ([]int, int) {
	out := make([]int, len(line))
	write, score := 0, 0
	merged := false

	for _, v := range line {
		if v == 0 {
			continue
		}
		if write > 0 && !merged && out[write-1] == v {
			out[write-1] *= 2
			score += out[write-1]
			merged = true
			continue
		}
		out[write] = v
		write++
		merged = false
	}
	return out, score
}

// coord maps the k-th cell of line i, counted from the edge tiles move
// toward, to board coordinates.
func coord(dir Direction, n, i, k int) (x, y int) {
	switch dir {
	case DirLeft:
		return k, i
	case DirRight:
		return n - 1 - k, i
	case DirUp:
		return i, k
	default:
		return i, n - 1 - k
	}
}

// Slide performs a move in the given direction.
// Returns the new board, score gained, and whether the board changed.
func Slide(board Board, dir Direction) (Board, int, bool) {
	n := board.Size()
	next := NewBoard(n)
	total, changed := 0, false

	line := make([]int, n)
	for i := range n {
		for k := range n {
			x, y := coord(dir, n, i, k)
			line[k] = board[y][x]
		}
		slid, score := slideLine(line)
		total += score
		for k := range n {
			x, y := coord(dir, n, i, k)
			next[y][x] = slid[k]
			if slid[k] != line[k] {
				changed = true
			}
		}
	}
	return next, total, changed
}

// EmptyCells returns all empty cells in row-major order.
func EmptyCells(board Board) []Cell {
	var cells []Cell
	for y := range board {
		for x, v := range board[y] {
			if v == 0 {
				cells = append(cells, Cell{X: x, Y: y})
			}
		}
	}
	return cells
}

// HasPossibleMerge returns true if any adjacent tiles can merge.
func HasPossibleMerge(board Board) bool {
	n := board.Size()
	for y := range n {
		for x := range n {
			v := board[y][x]
			if x < n-1 && board[y][x+1] == v {
				return true
			}
			if y < n-1 && board[y+1][x] == v {
				return true
			}
		}
	}
	return false
}

// CanMove returns true if any move is possible.
func CanMove(board Board) bool {
	return len(EmptyCells(board)) > 0 || HasPossibleMerge(board)
}

// MaxTile returns the maximum tile value on the board.
func MaxTile(board Board) int {
	m := 0
	for y := range board {
		for _, v := range board[y] {
			m = max(m, v)
		}
	}
	return m
}
