package preferences

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/mixplayer/internal/storage"
)

func TestThemeDefaultsAndPersists(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	prefs := New(ctx, store)
	assert.Equal(t, DefaultTheme, prefs.Theme())

	require.NoError(t, prefs.SetTheme(ctx, ThemeLight))
	assert.Equal(t, ThemeLight, prefs.Theme())

	reloaded := New(ctx, store)
	assert.Equal(t, ThemeLight, reloaded.Theme())
}

func TestThemeRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	prefs := New(ctx, nil)

	err := prefs.SetTheme(ctx, Theme("sepia"))
	assert.ErrorIs(t, err, ErrInvalidTheme)
	assert.Equal(t, DefaultTheme, prefs.Theme())
}

func TestThemeIgnoresCorruptValue(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, ThemeKey, []byte(`"neon"`)))

	assert.Equal(t, DefaultTheme, New(ctx, store).Theme())
}
