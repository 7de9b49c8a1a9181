package authority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate(t *testing.T) {
	t.Run("binds exactly once", func(t *testing.T) {
		g := NewGate()
		require.NoError(t, g.Bind("ST2TEST"))
		assert.ErrorIs(t, g.Bind("ST3TEST"), ErrAlreadyBound)
		assert.ErrorIs(t, g.Bind("ST2TEST"), ErrAlreadyBound)
	})

	t.Run("fails closed when unbound", func(t *testing.T) {
		g := NewGate()
		assert.ErrorIs(t, g.Require("ST1TEST"), ErrUnauthorized)
	})

	t.Run("rejects non-authority callers", func(t *testing.T) {
		g := NewGate()
		require.NoError(t, g.Bind("ST2TEST"))
		assert.ErrorIs(t, g.Require("ST1TEST"), ErrUnauthorized)
		assert.NoError(t, g.Require("ST2TEST"))
	})
}
