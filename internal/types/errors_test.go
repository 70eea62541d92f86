package types_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xhad/docsearch/internal/types"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("upload: %w", types.E(types.KindIndexWrite, "index.upsert", cause))

	assert.Equal(t, types.KindIndexWrite, types.KindOf(wrapped))
	assert.True(t, types.IsKind(wrapped, types.KindIndexWrite))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, types.KindInternal, types.KindOf(cause))
	assert.False(t, types.IsKind(nil, types.KindInternal))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "search: invalid_query", types.E(types.KindInvalidQuery, "search", nil).Error())
	assert.Equal(t, "delete: not_found: not found",
		types.E(types.KindNotFound, "delete", types.ErrNotFound).Error())
}
