package machine

import "strings"

// Tape is a logically infinite tape addressed by integer position.
//
// Cells at positions >= 0 live in right; cells at negative positions live in
// left, stored in reverse (position -1 is left[0]). Both halves grow only at
// their outer end, so extending either edge is an append.
type Tape struct {
	left  []Symbol
	right []Symbol
}

// NewTape returns a tape holding content starting at position 1, with a
// blank sentinel at position 0 and another after the last symbol.
func NewTape(content string) *Tape {
	cells := make([]Symbol, 0, len(content)+2)
	cells = append(cells, Blank)
	for i := 0; i < len(content); i++ {
		cells = append(cells, Symbol(content[i]))
	}
	cells = append(cells, Blank)
	return &Tape{right: cells}
}

// Min returns the leftmost allocated position.
func (t *Tape) Min() int {
	return -len(t.left)
}

// Max returns the rightmost allocated position.
func (t *Tape) Max() int {
	return len(t.right) - 1
}

// Len returns the number of allocated cells.
func (t *Tape) Len() int {
	return len(t.left) + len(t.right)
}

// Contains reports whether pos is allocated.
func (t *Tape) Contains(pos int) bool {
	return pos >= t.Min() && pos <= t.Max()
}

// Read returns the symbol at pos. Unallocated cells read as blank.
func (t *Tape) Read(pos int) Symbol {
	if !t.Contains(pos) {
		return Blank
	}
	if pos >= 0 {
		return t.right[pos]
	}
	return t.left[-pos-1]
}

// Write stores sym at pos, allocating as needed. Writing a non-blank at
// either edge allocates a fresh blank beyond it so the tape stays bounded
// by blanks.
func (t *Tape) Write(pos int, sym Symbol) {
	t.Extend(pos)
	if pos >= 0 {
		t.right[pos] = sym
	} else {
		t.left[-pos-1] = sym
	}
	if sym == Blank {
		return
	}
	if pos == t.Max() {
		t.right = append(t.right, Blank)
	}
	if pos == t.Min() {
		t.left = append(t.left, Blank)
	}
}

// Extend allocates blank cells up to and including pos.
func (t *Tape) Extend(pos int) {
	for pos > t.Max() {
		t.right = append(t.right, Blank)
	}
	for pos < t.Min() {
		t.left = append(t.left, Blank)
	}
}

// Cells returns the allocated cells from Min to Max.
func (t *Tape) Cells() []Symbol {
	cells := make([]Symbol, 0, t.Len())
	for i := len(t.left) - 1; i >= 0; i-- {
		cells = append(cells, t.left[i])
	}
	return append(cells, t.right...)
}

// String returns the tape content with leading and trailing blanks removed,
// or "_" when the tape holds no symbols.
func (t *Tape) String() string {
	s, _ := t.Snapshot()
	return s
}

// Snapshot returns the same content as String along with the position of
// its first cell. An empty tape returns "_" at position 1.
func (t *Tape) Snapshot() (string, int) {
	var sb strings.Builder
	sb.Grow(t.Len())
	for _, c := range t.Cells() {
		sb.WriteByte(byte(c))
	}
	all := sb.String()
	s := strings.TrimLeft(all, string(Blank))
	start := t.Min() + len(all) - len(s)
	s = strings.TrimRight(s, string(Blank))
	if s == "" {
		return string(Blank), 1
	}
	return s, start
}

// Count returns the number of cells holding sym.
func (t *Tape) Count(sym Symbol) int {
	n := 0
	for _, c := range t.left {
		if c == sym {
			n++
		}
	}
	for _, c := range t.right {
		if c == sym {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the tape.
func (t *Tape) Clone() *Tape {
	return &Tape{
		left:  append([]Symbol(nil), t.left...),
		right: append([]Symbol(nil), t.right...),
	}
}
