package grid

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/bethropolis/cellundo/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteXRLEGlider(t *testing.T) {
	glider := cellSet(
		types.Cell{X: 11, Y: -5},
		types.Cell{X: 12, Y: -4},
		types.Cell{X: 10, Y: -3}, types.Cell{X: 11, Y: -3}, types.Cell{X: 12, Y: -3},
	)
	var buf bytes.Buffer
	require.NoError(t, WriteXRLE(&buf, glider, big.NewInt(42), "B3/S23"))
	assert.Equal(t, "#CXRLE Pos=10,-5 Gen=42\nx = 3, y = 3, rule = B3/S23\nbo$2bo$3o!\n", buf.String())

	p, err := ReadXRLE(&buf)
	require.NoError(t, err)
	assert.Equal(t, "42", p.Gen.String())
	assert.Equal(t, "B3/S23", p.Rule)
	assert.ElementsMatch(t, []types.Cell{
		{X: 11, Y: -5}, {X: 12, Y: -4}, {X: 10, Y: -3}, {X: 11, Y: -3}, {X: 12, Y: -3},
	}, p.Cells)
}

func TestWriteXRLEEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXRLE(&buf, nil, new(big.Int), "B3/S23"))
	p, err := ReadXRLE(&buf)
	require.NoError(t, err)
	assert.Empty(t, p.Cells)
	assert.Equal(t, "0", p.Gen.String())
}

func TestXRLEBlankRowsAndWrap(t *testing.T) {
	cells := cellSet(types.Cell{X: 0, Y: 0}, types.Cell{X: 0, Y: 3})
	for x := 0; x < 200; x += 2 {
		cells[types.Cell{X: x, Y: 5}] = struct{}{}
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXRLE(&buf, cells, big.NewInt(1_000_000_000_000), "B3/S23"))
	assert.Contains(t, buf.String(), "o3$o")
	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len(line), rleLineWidth+1)
	}

	p, err := ReadXRLE(&buf)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000", p.Gen.String())
	assert.Len(t, p.Cells, len(cells))
}

func TestReadPlainRLE(t *testing.T) {
	p, err := ReadXRLE(strings.NewReader("#N blinker\nx = 3, y = 1\n3o!\n"))
	require.NoError(t, err)
	assert.Equal(t, []types.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, p.Cells)
	assert.Equal(t, "", p.Rule)
}

func TestReadXRLEErrors(t *testing.T) {
	_, err := ReadXRLE(strings.NewReader("x = 1, y = 1\n3z!\n"))
	assert.ErrorIs(t, err, ErrBadPattern)
	_, err = ReadXRLE(strings.NewReader("#CXRLE Pos=a,b\nx = 1, y = 1\no!\n"))
	assert.ErrorIs(t, err, ErrBadPattern)
}
