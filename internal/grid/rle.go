package grid

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/bethropolis/cellundo/internal/types"
)

const rleLineWidth = 70

// Pattern is a decoded pattern file.
type Pattern struct {
	Cells []types.Cell
	Gen   *big.Int
	Rule  string
}

// bounds returns the bounding box of cells; ok is false for an empty set.
func bounds(cells map[types.Cell]struct{}) (r types.Rect, ok bool) {
	for c := range cells {
		if !ok {
			r = types.Rect{Top: c.Y, Left: c.X, Bottom: c.Y, Right: c.X}
			ok = true
			continue
		}
		r.Top = min(r.Top, c.Y)
		r.Bottom = max(r.Bottom, c.Y)
		r.Left = min(r.Left, c.X)
		r.Right = max(r.Right, c.X)
	}
	return r, ok
}

type rleWriter struct {
	w    *bufio.Writer
	line int
}

func (rw *rleWriter) emit(n int, tag byte) {
	if n == 0 {
		return
	}
	tok := string(tag)
	if n > 1 {
		tok = strconv.Itoa(n) + tok
	}
	if rw.line+len(tok) > rleLineWidth {
		rw.w.WriteByte('\n')
		rw.line = 0
	}
	rw.w.WriteString(tok)
	rw.line += len(tok)
}

// WriteXRLE encodes live cells as extended RLE. The header records the
// top-left position and the generation.
func WriteXRLE(w io.Writer, cells map[types.Cell]struct{}, gen *big.Int, rule string) error {
	bw := bufio.NewWriter(w)
	r, ok := bounds(cells)
	if !ok {
		r = types.Rect{}
	}
	fmt.Fprintf(bw, "#CXRLE Pos=%d,%d Gen=%s\n", r.Left, r.Top, gen)
	if !ok {
		fmt.Fprintf(bw, "x = 0, y = 0, rule = %s\n!\n", rule)
		return bw.Flush()
	}
	fmt.Fprintf(bw, "x = %d, y = %d, rule = %s\n", r.Width(), r.Height(), rule)

	rows := make(map[int][]int)
	for c := range cells {
		rows[c.Y] = append(rows[c.Y], c.X)
	}

	rw := &rleWriter{w: bw}
	blankRows := 0
	for y := r.Top; y <= r.Bottom; y++ {
		xs := rows[y]
		if len(xs) == 0 {
			blankRows++
			continue
		}
		if y > r.Top {
			rw.emit(blankRows+1, '$')
		}
		blankRows = 0
		sort.Ints(xs)

		x := r.Left
		for i := 0; i < len(xs); {
			rw.emit(xs[i]-x, 'b')
			j := i
			for j+1 < len(xs) && xs[j+1] == xs[j]+1 {
				j++
			}
			rw.emit(j-i+1, 'o')
			x = xs[j] + 1
			i = j + 1
		}
	}
	bw.WriteString("!\n")
	return bw.Flush()
}

// ReadXRLE decodes RLE or extended RLE text. A missing Gen defaults to 0
// and a missing Pos places the pattern at the origin.
func ReadXRLE(rd io.Reader) (*Pattern, error) {
	p := &Pattern{Gen: new(big.Int)}
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	x0, y0 := 0, 0
	haveHeader := false
	var body strings.Builder
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "#"):
			if strings.HasPrefix(line, "#CXRLE") {
				if err := parseXRLEComment(line, &x0, &y0, p.Gen); err != nil {
					return nil, err
				}
			}
		case !haveHeader && strings.HasPrefix(line, "x"):
			haveHeader = true
			p.Rule = parseRuleField(line)
		default:
			body.WriteString(line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read pattern: %w", err)
	}

	cells, err := decodeBody(body.String(), x0, y0)
	if err != nil {
		return nil, err
	}
	p.Cells = cells
	return p, nil
}

func parseXRLEComment(line string, x0, y0 *int, gen *big.Int) error {
	for _, field := range strings.Fields(line)[1:] {
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "Pos":
			xs, ys, ok := strings.Cut(val, ",")
			if !ok {
				return fmt.Errorf("%w: bad Pos %q", ErrBadPattern, val)
			}
			x, errX := strconv.Atoi(xs)
			y, errY := strconv.Atoi(ys)
			if errX != nil || errY != nil {
				return fmt.Errorf("%w: bad Pos %q", ErrBadPattern, val)
			}
			*x0, *y0 = x, y
		case "Gen":
			if _, ok := gen.SetString(val, 10); !ok {
				return fmt.Errorf("%w: bad Gen %q", ErrBadPattern, val)
			}
		}
	}
	return nil
}

func parseRuleField(line string) string {
	for _, field := range strings.Split(line, ",") {
		key, val, ok := strings.Cut(field, "=")
		if ok && strings.TrimSpace(key) == "rule" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

func decodeBody(body string, x0, y0 int) ([]types.Cell, error) {
	var cells []types.Cell
	x, y, n := x0, y0, 0
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch >= '0' && ch <= '9':
			n = n*10 + int(ch-'0')
			continue
		case ch == '!':
			return cells, nil
		case ch == '$':
			y += max(n, 1)
			x = x0
		case ch == 'b' || ch == '.':
			x += max(n, 1)
		case ch == 'o' || (ch >= 'A' && ch <= 'X'):
			for k := 0; k < max(n, 1); k++ {
				cells = append(cells, types.Cell{X: x, Y: y})
				x++
			}
		case ch == ' ' || ch == '\t':
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrBadPattern, ch)
		}
		n = 0
	}
	return cells, nil
}
