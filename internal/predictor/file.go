package predictor

import (
	"context"
	"fmt"
	"os"

	"PriceForecaster/internal/model"
)

// FileSource loads a JSON network artifact from disk on every Open.
type FileSource struct {
	Path string
}

// NewFileSource checks that path exists and is a regular file.
func NewFileSource(path string) (*FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("model artifact %s is a directory", path)
	}
	return &FileSource{Path: path}, nil
}

// Name identifies the source in logs and errors.
func (f *FileSource) Name() string { return "file:" + f.Path }

// Open reads and decodes the artifact. The same file serves every ticker routed to it.
func (f *FileSource) Open(_ context.Context, ticker string) (Model, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: read %s: %v: %w", ticker, f.Path, err, model.ErrModelUnavailable)
	}
	n, err := DecodeNetwork(data)
	if err != nil {
		return nil, fmt.Errorf("%s: load %s: %v: %w", ticker, f.Path, err, model.ErrModelUnavailable)
	}
	return n, nil
}
