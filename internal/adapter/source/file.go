package source

import (
	"context"
	"io"
	"os"
)

// File opens a dataset on the local filesystem.
type File struct {
	Path string
}

func (f File) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

func (f File) Name() string { return f.Path }
