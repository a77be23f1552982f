package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode(t *testing.T) {
	assert.Equal(t, ModeLight, ModeAuto.Next())
	assert.Equal(t, ModeDark, ModeLight.Next())
	assert.Equal(t, ModeAuto, ModeDark.Next())

	assert.Equal(t, "Auto", ModeAuto.Label())
	assert.Equal(t, "Claro", ModeLight.Label())
	assert.Equal(t, "Oscuro", ModeDark.Label())

	assert.Equal(t, "dark", ModeAuto.Resolve(true))
	assert.Equal(t, "light", ModeAuto.Resolve(false))
	assert.Equal(t, "light", ModeLight.Resolve(true))
	assert.Equal(t, "dark", ModeDark.Resolve(false))
}

func TestParseMode(t *testing.T) {
	for _, m := range AllModes() {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMode("sepia")
	assert.Error(t, err)
	assert.Equal(t, ModeAuto, Normalize("sepia"))
	assert.Equal(t, ModeAuto, Normalize(""))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore("")
	m, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	require.NoError(t, s.Save(ModeDark))
	m, _ = s.Load()
	assert.Equal(t, ModeDark, m)

	assert.Error(t, s.Save("neon"))
}

func TestFileStore_MissingFileIsAuto(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "settings.toml"), nil)
	m, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)
}

func TestFileStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")
	s := NewFileStore(path, nil)

	require.NoError(t, s.Save(ModeLight))
	m, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, ModeLight, m)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `theme_mode = "light"`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_UnknownValueIsAuto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(`theme_mode = "sepia"`+"\n"), 0o600))

	m, err := NewFileStore(path, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme_mode = \n"), 0o600))

	m, err := NewFileStore(path, nil).Load()
	assert.Error(t, err)
	assert.Equal(t, ModeAuto, m)
}

func TestFileStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	watched := NewFileStore(path, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Mode, 4)
	require.NoError(t, watched.Watch(ctx, func(m Mode) { changes <- m }))

	other := NewFileStore(path, nil)
	require.NoError(t, other.Save(ModeDark))

	select {
	case m := <-changes:
		assert.Equal(t, ModeDark, m)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}
