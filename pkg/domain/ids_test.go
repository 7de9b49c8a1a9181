package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal(t *testing.T) {
	t.Run("empty principal is nil", func(t *testing.T) {
		assert.True(t, Principal("").IsNil())
		assert.False(t, Principal("ST1ADA").IsNil())
	})

	t.Run("round trips through String", func(t *testing.T) {
		assert.Equal(t, "ST1ADA", Principal("ST1ADA").String())
	})
}

func TestIDFormatting(t *testing.T) {
	assert.Equal(t, "0", UserID(0).String())
	assert.Equal(t, "42", QuizID(42).String())
	assert.Equal(t, "7", ElectionID(7).String())
}
