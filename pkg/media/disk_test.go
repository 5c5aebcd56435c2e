package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_AddAndList(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/storage")
	ctx := context.Background()

	att, err := store.Add(ctx, "tasks/1", CollectionAttachments, Upload{
		Name:    "report.pdf",
		Content: strings.NewReader("pdf content"),
	})
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", att.FileName)
	assert.Equal(t, int64(len("pdf content")), att.Size)
	assert.True(t, strings.HasPrefix(att.URL, "/storage/tasks/1/attachments/"))
	assert.True(t, strings.HasSuffix(att.URL, "/report.pdf"))

	listed, err := store.List(ctx, "tasks/1", CollectionAttachments)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, *att, listed[0])
}

func TestDiskStore_Add_RequiresName(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/storage")

	_, err := store.Add(context.Background(), "tasks/1", CollectionAttachments, Upload{
		Content: strings.NewReader("x"),
	})
	assert.Error(t, err)
}

func TestDiskStore_Add_StripsDirectoryComponents(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root, "/storage")

	att, err := store.Add(context.Background(), "tasks/1", CollectionAttachments, Upload{
		Name:    "../../../etc/passwd",
		Content: strings.NewReader("nope"),
	})
	require.NoError(t, err)
	assert.Equal(t, "passwd", att.FileName)

	// Nothing may land outside the store root.
	outside := filepath.Join(root, "..", "etc")
	_, err = os.Stat(outside)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStore_List_MissingCollection(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/storage")

	listed, err := store.List(context.Background(), "tasks/404", CollectionAttachments)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestDiskStore_List_SeparatesOwners(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/storage")
	ctx := context.Background()

	_, err := store.Add(ctx, "tasks/1", CollectionAttachments, Upload{Name: "a.txt", Content: strings.NewReader("a")})
	require.NoError(t, err)
	_, err = store.Add(ctx, "tasks/2", CollectionAttachments, Upload{Name: "b.txt", Content: strings.NewReader("b")})
	require.NoError(t, err)

	listed, err := store.List(ctx, "tasks/1", CollectionAttachments)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "a.txt", listed[0].FileName)
}

func TestDiskStore_Clear(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/storage")
	ctx := context.Background()

	_, err := store.Add(ctx, "tasks/1", CollectionAttachments, Upload{Name: "a.txt", Content: strings.NewReader("a")})
	require.NoError(t, err)
	_, err = store.Add(ctx, "tasks/1", CollectionAttachments, Upload{Name: "b.txt", Content: strings.NewReader("b")})
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, "tasks/1", CollectionAttachments))

	listed, err := store.List(ctx, "tasks/1", CollectionAttachments)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Clearing an already-empty collection is a no-op.
	require.NoError(t, store.Clear(ctx, "tasks/1", CollectionAttachments))
}

func TestDiskStore_URLEscapesFileName(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/storage")

	att, err := store.Add(context.Background(), "tasks/1", CollectionAttachments, Upload{
		Name:    "weekly report.pdf",
		Content: strings.NewReader("x"),
	})
	require.NoError(t, err)
	assert.Contains(t, att.URL, "weekly%20report.pdf")
}
