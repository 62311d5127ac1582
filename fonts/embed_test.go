package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltin(t *testing.T) {
	for _, name := range Builtin() {
		data, err := Load("embed:" + name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
	data, err := Load("embed:goregular.ttf")
	require.NoError(t, err)
	assert.Equal(t, Fallback(), data)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
	_, err = Load("embed:comicsans")
	assert.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.ttf"))
	assert.Error(t, err)
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.ttf")
	require.NoError(t, os.WriteFile(path, Fallback(), 0o644))
	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, len(Fallback()), len(data))
}
