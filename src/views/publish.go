package views

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Uploader interface {
	UploadFile(ctx context.Context, key string, object io.Reader, size int64, contentType string) error
}

type Lister interface {
	ListObjects(ctx context.Context, prefix string, filters []string) ([]string, error)
}

// Publish uploads every <dir>/*.js bundle under prefix and returns the view
// names it published, sorted.
func Publish(ctx context.Context, store Uploader, prefix, dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.js"))
	if err != nil {
		return nil, err
	}
	published := make([]string, 0, len(files))
	for _, file := range files {
		body, err := os.ReadFile(file)
		if err != nil {
			return published, err
		}
		name := strings.TrimSuffix(filepath.Base(file), ".js")
		key := BucketSource{Prefix: prefix}.Key(name)
		if err := store.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), ContentType); err != nil {
			return published, fmt.Errorf("publish %s: %w", name, err)
		}
		published = append(published, name)
	}
	sort.Strings(published)
	return published, nil
}

// Missing lists which of names have no bundle under prefix.
func Missing(ctx context.Context, store Lister, prefix string, names []string) ([]string, error) {
	keys, err := store.ListObjects(ctx, prefix, []string{"js"})
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(keys))
	for _, key := range keys {
		present[key] = true
	}
	var missing []string
	for _, name := range names {
		if !present[BucketSource{Prefix: prefix}.Key(name)] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}
