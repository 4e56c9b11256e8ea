package views

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"photolayout/src/app"
)

// MapSource serves bundles from memory.
type MapSource map[string][]byte

func (s MapSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return body, nil
}

// Placeholders returns a MapSource with a minimal module for each name.
func Placeholders(names ...string) MapSource {
	s := make(MapSource, len(names))
	for _, name := range names {
		s[name] = []byte(fmt.Sprintf("export default { name: %q };\n", name))
	}
	return s
}

// DirSource reads <Dir>/<name>.js.
type DirSource struct {
	Dir string
}

func (s DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(filepath.Join(s.Dir, filepath.Base(name)+".js"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return body, err
}

// ObjectFetcher reads whole objects by key.
type ObjectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// BucketSource reads <Prefix><name>.js from object storage.
type BucketSource struct {
	Store  ObjectFetcher
	Prefix string
}

func (s BucketSource) Key(name string) string {
	return s.Prefix + name + ".js"
}

func (s BucketSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	body, err := s.Store.Fetch(ctx, s.Key(name))
	if errors.Is(err, app.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s: %w", ErrModuleNotFound, name, err)
	}
	return body, err
}
