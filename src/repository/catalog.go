package repository

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/gin-gonic/gin/binding"
	"gopkg.in/yaml.v3"

	"photolayout/src/app"
	cfg "photolayout/src/configuration"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

type (
	// CatalogDB serves the layouts and background swatches a session can use.
	CatalogDB interface {
		Layouts() []app.LayoutOption
		Layout(id string) (app.LayoutOption, bool)
		Colors() []app.ColorOption
		Color(id string) (app.ColorOption, bool)
	}

	InMemoryDB struct {
		layouts     []app.LayoutOption
		colors      []app.ColorOption
		layoutIndex map[string]int
		colorIndex  map[string]int
	}

	catalogFile struct {
		Layouts []app.LayoutOption `yaml:"layouts"`
		Colors  []app.ColorOption  `yaml:"colors"`
	}
)

// NewCatalog loads the catalog named by config, or the built-in one.
func NewCatalog(config *cfg.Properties) (CatalogDB, error) {
	if config == nil {
		return nil, fmt.Errorf("config is not valid")
	}
	data := defaultCatalog
	if path := config.Catalog.Path; path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog. Ids must be unique per
// kind and every record must pass its binding rules.
func ParseCatalog(data []byte) (*InMemoryDB, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	db := &InMemoryDB{
		layouts:     file.Layouts,
		colors:      file.Colors,
		layoutIndex: make(map[string]int, len(file.Layouts)),
		colorIndex:  make(map[string]int, len(file.Colors)),
	}
	for i := range file.Layouts {
		layout := &file.Layouts[i]
		if err := binding.Validator.ValidateStruct(layout); err != nil {
			return nil, fmt.Errorf("%w: layout %q: %v", ErrInvalidCatalog, layout.ID, err)
		}
		if _, _, err := layout.Ratio(); err != nil {
			return nil, fmt.Errorf("%w: layout %q: %v", ErrInvalidCatalog, layout.ID, err)
		}
		if _, dup := db.layoutIndex[layout.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate layout %q", ErrInvalidCatalog, layout.ID)
		}
		db.layoutIndex[layout.ID] = i
	}
	for i := range file.Colors {
		color := &file.Colors[i]
		if err := binding.Validator.ValidateStruct(color); err != nil {
			return nil, fmt.Errorf("%w: color %q: %v", ErrInvalidCatalog, color.ID, err)
		}
		if _, dup := db.colorIndex[color.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate color %q", ErrInvalidCatalog, color.ID)
		}
		db.colorIndex[color.ID] = i
	}
	return db, nil
}

func (i *InMemoryDB) Layouts() []app.LayoutOption {
	out := make([]app.LayoutOption, 0, len(i.layouts))
	return append(out, i.layouts...)
}

func (i *InMemoryDB) Layout(id string) (app.LayoutOption, bool) {
	idx, ok := i.layoutIndex[id]
	if !ok {
		return app.LayoutOption{}, false
	}
	return i.layouts[idx], true
}

func (i *InMemoryDB) Colors() []app.ColorOption {
	out := make([]app.ColorOption, 0, len(i.colors))
	return append(out, i.colors...)
}

func (i *InMemoryDB) Color(id string) (app.ColorOption, bool) {
	idx, ok := i.colorIndex[id]
	if !ok {
		return app.ColorOption{}, false
	}
	return i.colors[idx], true
}
