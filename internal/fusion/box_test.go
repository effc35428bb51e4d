package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIoU_Reflexive(t *testing.T) {
	b := Box{X1: 10, Y1: 20, X2: 110, Y2: 220}
	assert.Equal(t, 1.0, IoU(b, b))
}

func TestIoU_Symmetric(t *testing.T) {
	cases := []struct {
		name string
		a, b Box
	}{
		{"partial overlap", Box{0, 0, 10, 10}, Box{5, 5, 15, 15}},
		{"containment", Box{0, 0, 100, 100}, Box{25, 25, 75, 75}},
		{"disjoint", Box{0, 0, 10, 10}, Box{20, 20, 30, 30}},
		{"edge touching", Box{0, 0, 10, 10}, Box{10, 0, 20, 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, IoU(tc.a, tc.b), IoU(tc.b, tc.a))
		})
	}
}

func TestIoU_Disjoint(t *testing.T) {
	a := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := Box{X1: 20, Y1: 20, X2: 30, Y2: 30}
	assert.Equal(t, 0.0, IoU(a, b))
}

func TestIoU_EdgeTouchingIsZero(t *testing.T) {
	a := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := Box{X1: 10, Y1: 0, X2: 20, Y2: 10}
	assert.Equal(t, 0.0, IoU(a, b))
}

func TestIoU_PartialOverlap(t *testing.T) {
	// 5x5 intersection over 100+100-25 union.
	a := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := Box{X1: 5, Y1: 5, X2: 15, Y2: 15}
	assert.InDelta(t, 25.0/175.0, IoU(a, b), 1e-12)
}

func TestIoU_DegenerateBox(t *testing.T) {
	degenerate := Box{X1: 5, Y1: 5, X2: 5, Y2: 5}
	inverted := Box{X1: 10, Y1: 10, X2: 0, Y2: 0}
	normal := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}

	assert.Equal(t, 0.0, IoU(degenerate, normal))
	assert.Equal(t, 0.0, IoU(normal, degenerate))
	assert.Equal(t, 0.0, IoU(inverted, normal))
}

func TestIoU_BothZeroArea(t *testing.T) {
	// Identical zero-area boxes have union 0; must not divide by zero.
	z := Box{X1: 3, Y1: 3, X2: 3, Y2: 9}
	assert.Equal(t, 0.0, IoU(z, z))
}

func TestIoU_Range(t *testing.T) {
	cases := []struct{ a, b Box }{
		{Box{0, 0, 10, 10}, Box{1, 1, 9, 9}},
		{Box{0, 0, 1, 1}, Box{0.5, 0.5, 1.5, 1.5}},
		{Box{-10, -10, 10, 10}, Box{0, 0, 20, 20}},
	}
	for _, tc := range cases {
		v := IoU(tc.a, tc.b)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestBox_Valid(t *testing.T) {
	assert.True(t, Box{0, 0, 1, 1}.Valid())
	assert.False(t, Box{0, 0, 0, 1}.Valid())
	assert.False(t, Box{0, 1, 1, 0}.Valid())
}
