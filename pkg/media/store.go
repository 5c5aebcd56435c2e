package media

import (
	"context"
	"io"
)

// CollectionAttachments is the collection name for task attachments.
const CollectionAttachments = "attachments"

// Upload is a file handed to the store for writing.
type Upload struct {
	Name    string
	Content io.Reader
}

// Attachment describes one stored file.
type Attachment struct {
	FileName string
	Size     int64
	URL      string
}

// Store keeps named collections of files per owning entity. Owner keys
// look like "tasks/42"; Add appends to a collection, Clear removes the
// whole collection.
type Store interface {
	Add(ctx context.Context, owner, collection string, upload Upload) (*Attachment, error)
	List(ctx context.Context, owner, collection string) ([]Attachment, error)
	Clear(ctx context.Context, owner, collection string) error
}
