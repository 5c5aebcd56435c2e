package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DiskStore implements Store on the local filesystem. Files live under
// <root>/<owner>/<collection>/<uuid>/<name>; the uuid directory keeps
// the original file name while guaranteeing unique storage paths.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates a disk-backed store rooted at root. baseURL
// prefixes the URLs returned for stored files.
func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{root: root, baseURL: baseURL}
}

// Add writes the upload into the owner's collection and returns its metadata.
func (s *DiskStore) Add(ctx context.Context, owner, collection string, upload Upload) (*Attachment, error) {
	if upload.Name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	name := filepath.Base(upload.Name)

	id := uuid.New().String()
	dir := filepath.Join(s.root, filepath.FromSlash(owner), collection, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create media file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, upload.Content)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("write media file: %w", err)
	}

	return &Attachment{
		FileName: name,
		Size:     size,
		URL:      s.fileURL(owner, collection, id, name),
	}, nil
}

// List returns the collection's files ordered by storage time.
func (s *DiskStore) List(ctx context.Context, owner, collection string) ([]Attachment, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(owner), collection)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read media directory: %w", err)
	}

	type stored struct {
		att Attachment
		mod time.Time
	}
	var files []stored
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		inner, err := os.ReadDir(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read media directory: %w", err)
		}
		for _, f := range inner {
			info, err := f.Info()
			if err != nil {
				return nil, fmt.Errorf("stat media file: %w", err)
			}
			files = append(files, stored{
				att: Attachment{
					FileName: f.Name(),
					Size:     info.Size(),
					URL:      s.fileURL(owner, collection, entry.Name(), f.Name()),
				},
				mod: info.ModTime(),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].mod.Equal(files[j].mod) {
			return files[i].mod.Before(files[j].mod)
		}
		return files[i].att.FileName < files[j].att.FileName
	})

	attachments := make([]Attachment, len(files))
	for i, f := range files {
		attachments[i] = f.att
	}
	return attachments, nil
}

// Clear removes every file in the owner's collection. Clearing a
// collection that does not exist is a no-op.
func (s *DiskStore) Clear(ctx context.Context, owner, collection string) error {
	dir := filepath.Join(s.root, filepath.FromSlash(owner), collection)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear media collection: %w", err)
	}
	return nil
}

func (s *DiskStore) fileURL(owner, collection, id, name string) string {
	return s.baseURL + "/" + path.Join(owner, collection, id, url.PathEscape(name))
}
