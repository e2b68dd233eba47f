package mapping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookRegistry(t *testing.T) {
	stamp := func(_ context.Context, _ map[string]any, result map[string]any) (map[string]any, error) {
		result["stamped"] = true
		return result, nil
	}

	r := NewHookRegistry().OnExport("partner", stamp).OnImport("tag", stamp)

	require.NotNil(t, r.Export("partner"))
	assert.Nil(t, r.Import("partner"))
	assert.NotNil(t, r.Import("tag"))
	assert.Equal(t, []string{"partner", "tag"}, r.Names())

	out, err := r.Export("partner")(context.Background(), nil, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"stamped": true}, out)

	var none *HookRegistry
	assert.Nil(t, none.Export("partner"))
	assert.Nil(t, none.Import("tag"))
	assert.Empty(t, none.Names())
}
