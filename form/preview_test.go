package form

import (
	"context"
	"formintake/core"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPreviewer_AcquireGetRelease(t *testing.T) {
	p := NewMemoryPreviewer()

	img := &core.ProfileImage{Name: "me.png", MIME: "image/png", Data: []byte{1, 2, 3}}
	handle, err := p.Acquire(img)
	require.NoError(t, err)
	assert.NotEmpty(t, handle.Token)
	assert.Contains(t, handle.URL, handle.Token)
	assert.Equal(t, 1, p.Live())

	mime, data, ok := p.Get(handle.Token)
	require.True(t, ok)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte{1, 2, 3}, data)

	p.Release(handle)
	assert.Equal(t, 0, p.Live())

	_, _, ok = p.Get(handle.Token)
	assert.False(t, ok)
}

func TestMemoryPreviewer_DistinctTokens(t *testing.T) {
	p := NewMemoryPreviewer()

	a, err := p.Acquire(&core.ProfileImage{MIME: "image/png", Data: []byte{1}})
	require.NoError(t, err)
	b, err := p.Acquire(&core.ProfileImage{MIME: "image/jpeg", Data: []byte{2}})
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
	assert.Equal(t, 2, p.Live())

	// Releasing one handle leaves the other intact.
	p.Release(a)
	_, _, ok := p.Get(b.Token)
	assert.True(t, ok)
	assert.Equal(t, 1, p.Live())
}

func TestMemoryPreviewer_ReleaseUnknownIsHarmless(t *testing.T) {
	p := NewMemoryPreviewer()
	p.Release(core.PreviewHandle{Token: "never-issued"})
	assert.Equal(t, 0, p.Live())
}

func TestDataURLEncoder(t *testing.T) {
	ctx := context.Background()

	url, err := DataURLEncoder{}.Encode(ctx, &core.ProfileImage{MIME: "image/png", Data: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AQID", url)

	// Missing MIME falls back to a generic type.
	url, err = DataURLEncoder{}.Encode(ctx, &core.ProfileImage{Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "data:application/octet-stream;base64,eA==", url)

	_, err = DataURLEncoder{}.Encode(ctx, nil)
	assert.Error(t, err)
}
