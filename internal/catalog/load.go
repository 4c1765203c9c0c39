package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed works.yaml
var defaultWorks []byte

//go:embed schema.json
var schemaJSON []byte

// ErrInvalid is wrapped by every error Load returns for a malformed document.
var ErrInvalid = errors.New("invalid catalog")

type document struct {
	Categories []string    `yaml:"categories"`
	Works      []*WorkItem `yaml:"works"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the compiled-in catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(defaultWorks)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded works.yaml: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(data)
}

// Load parses and validates a YAML catalog document.
func Load(data []byte) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	c := &Catalog{
		works: make([]*WorkItem, 0, len(doc.Works)),
		index: make(map[string]*WorkItem, len(doc.Works)),
	}

	declared := len(doc.Categories) > 0
	for _, cat := range doc.Categories {
		cat = strings.TrimSpace(cat)
		if cat == "" || cat == All {
			return nil, fmt.Errorf("%w: category %q is reserved or empty", ErrInvalid, cat)
		}
		c.categories = append(c.categories, cat)
	}

	for i, w := range doc.Works {
		if w == nil {
			return nil, fmt.Errorf("%w: works[%d] is empty", ErrInvalid, i)
		}
		w.ID = strings.TrimSpace(w.ID)
		if w.ID == "" || strings.TrimSpace(w.Title) == "" {
			return nil, fmt.Errorf("%w: works[%d] needs an id and a title", ErrInvalid, i)
		}
		if _, dup := c.index[w.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate work id %q", ErrInvalid, w.ID)
		}
		if w.Category == All {
			return nil, fmt.Errorf("%w: work %q uses the reserved category %q", ErrInvalid, w.ID, All)
		}
		if declared {
			if !c.HasCategory(w.Category) {
				return nil, fmt.Errorf("%w: work %q has unknown category %q", ErrInvalid, w.ID, w.Category)
			}
		} else if !c.HasCategory(w.Category) {
			c.categories = append(c.categories, w.Category)
		}
		if w.CaseStudy != nil {
			expandGallery(w.CaseStudy)
		}
		c.works = append(c.works, w)
		c.index[w.ID] = w
	}
	return c, nil
}

func validateSchema(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("%w: schema check: %v", ErrInvalid, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	return nil
}

// expandGallery fills Gallery from GalleryPattern when no literal list is given.
// Patterns take a 1-based image number, e.g. "/images/x/x-%02d.jpg".
func expandGallery(cs *CaseStudy) {
	if len(cs.Gallery) > 0 || cs.GalleryPattern == "" || cs.GalleryCount <= 0 {
		return
	}
	cs.Gallery = make([]Image, 0, cs.GalleryCount)
	for n := 1; n <= cs.GalleryCount; n++ {
		alt := cs.GalleryAltPattern
		switch {
		case strings.Contains(alt, "%"):
			alt = fmt.Sprintf(alt, n)
		case alt == "":
			alt = cs.Client + " " + strconv.Itoa(n)
		default:
			alt = alt + " " + strconv.Itoa(n)
		}
		cs.Gallery = append(cs.Gallery, Image{
			Src: fmt.Sprintf(cs.GalleryPattern, n),
			Alt: alt,
		})
	}
}
