package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutOpenDelete(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "plants/a.png", strings.NewReader("png-bytes"), "image/png"))
	assert.True(t, d.Exists(ctx, "plants/a.png"))

	rc, err := d.Open(ctx, "plants/a.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(data))

	assert.Equal(t, "http://localhost:8080/storage/plants/a.png", d.URL("plants/a.png"))

	require.NoError(t, d.Delete(ctx, "plants/a.png"))
	assert.False(t, d.Exists(ctx, "plants/a.png"))
	assert.NoError(t, d.Delete(ctx, "plants/a.png"), "deleting twice is fine")

	_, err = d.Open(ctx, "plants/a.png")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalPathsStayUnderRoot(t *testing.T) {
	root := t.TempDir()
	d, err := NewLocal(root, "")
	require.NoError(t, err)

	require.NoError(t, d.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), ""))

	got, ok := Root(d)
	require.True(t, ok)
	assert.FileExists(t, filepath.Join(got, "escape.txt"))
}

func TestConnectLocalDefault(t *testing.T) {
	m, err := Connect(context.Background(), Config{Default: "local", LocalRoot: t.TempDir(), LocalURL: "http://x"})
	require.NoError(t, err)
	assert.NotNil(t, m.Default())

	_, err = m.Use("s3")
	assert.Error(t, err)
}

func TestConnectUnknownDefault(t *testing.T) {
	_, err := Connect(context.Background(), Config{Default: "s3", LocalRoot: t.TempDir()})
	assert.ErrorContains(t, err, `"s3"`)
}
