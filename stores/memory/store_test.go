package memory

import (
	"context"
	"formintake/core"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_UnknownKey(t *testing.T) {
	store := NewStore()

	_, err := store.Load(context.Background(), "submissions")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	payload := []byte(`[{"timestamp":"01ARZ3NDEKTSV4RRFFQ69G5FAV"}]`)
	require.NoError(t, store.Save(ctx, "submissions", payload))

	got, err := store.Load(ctx, "submissions")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSave_OverwritesInFull(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "submissions", []byte("first")))
	require.NoError(t, store.Save(ctx, "submissions", []byte("second")))

	got, err := store.Load(ctx, "submissions")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestLoad_ReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "submissions", []byte("data")))

	got, err := store.Load(ctx, "submissions")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := store.Load(ctx, "submissions")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), again)
}

func TestKeys_Independent(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("one")))
	require.NoError(t, store.Save(ctx, "b", []byte("two")))

	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)
}
