// internal/campus/locations/catalog.go
package locations

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/models"
)

type kindNumber struct {
	kind   models.LocationKind
	number int
}

// Dorm 4 and academic building 6 are intentionally not served. Matching
// records are dropped at build time, so number lookups for them fall
// through to the not-available reply.
var forbiddenPlaces = map[kindNumber]struct{}{
	{models.LocationKindDorm, 4}:  {},
	{models.LocationKindClass, 6}: {},
}

// entrySchema validates one locations.yml record. Every field is optional,
// but a wrongly typed field fails the whole entry.
var entrySchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"kind": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"dorm", "class"},
		},
		"number": map[string]interface{}{
			"type":    "integer",
			"minimum": 0,
			"maximum": 99,
		},
		"title": map[string]interface{}{"type": "string"},
		"url":   map[string]interface{}{"type": "string"},
		"aliases": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
}

// Catalog is the in-memory index over the location records. It is built
// once at startup; lookups are read-only and safe for concurrent use.
type Catalog struct {
	places       []models.LocationRecord
	aliasIndex   map[string]int
	aliasOrder   []string
	kindNumIndex map[kindNumber]int
}

// BuildCatalog filters and indexes raw catalog entries. Entries failing the
// schema are skipped silently, records on the forbidden (kind, number) list
// are dropped. Alias keys are normalized; a duplicate alias keeps its first
// position in the scan order but later records win the lookup.
func BuildCatalog(entries []map[string]interface{}) *Catalog {
	c := &Catalog{
		aliasIndex:   make(map[string]int),
		kindNumIndex: make(map[kindNumber]int),
	}

	schemaLoader := gojsonschema.NewGoLoader(entrySchema)
	for _, entry := range entries {
		result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(entry))
		if err != nil || !result.Valid() {
			continue
		}
		rec := recordFromEntry(entry)
		if rec.Kind != "" && rec.Number != nil {
			if _, banned := forbiddenPlaces[kindNumber{rec.Kind, *rec.Number}]; banned {
				continue
			}
		}
		c.places = append(c.places, rec)
	}

	for i := range c.places {
		rec := &c.places[i]
		for _, alias := range rec.Aliases {
			key := Normalize(alias)
			if _, seen := c.aliasIndex[key]; !seen {
				c.aliasOrder = append(c.aliasOrder, key)
			}
			c.aliasIndex[key] = i
		}
		if rec.Kind != "" && rec.Number != nil {
			c.kindNumIndex[kindNumber{rec.Kind, *rec.Number}] = i
		}
	}

	return c
}

// LoadCatalog reads a locations.yml file and builds the catalog from it.
// Top-level items that are not mappings are ignored.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogLoadFailedError(fmt.Errorf("read %s: %w", path, err))
	}

	var raw []interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewCatalogLoadFailedError(fmt.Errorf("parse %s: %w", path, err))
	}

	entries := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if entry, ok := item.(map[string]interface{}); ok {
			entries = append(entries, entry)
		}
	}

	return BuildCatalog(entries), nil
}

// ByAlias resolves a phrase that exactly matches a catalog alias. The
// argument is normalized before lookup.
func (c *Catalog) ByAlias(alias string) (*models.LocationRecord, bool) {
	i, ok := c.aliasIndex[Normalize(alias)]
	if !ok {
		return nil, false
	}
	return &c.places[i], true
}

// ByKindNumber resolves a classified building number.
func (c *Catalog) ByKindNumber(kind models.LocationKind, number int) (*models.LocationRecord, bool) {
	i, ok := c.kindNumIndex[kindNumber{kind, number}]
	if !ok {
		return nil, false
	}
	return &c.places[i], true
}

// All returns the surviving records in file order.
func (c *Catalog) All() []models.LocationRecord {
	return c.places
}

// AliasesInOrder returns the normalized aliases in first-seen file order,
// which keeps the substring fallback deterministic.
func (c *Catalog) AliasesInOrder() []string {
	return c.aliasOrder
}

func recordFromEntry(entry map[string]interface{}) models.LocationRecord {
	rec := models.LocationRecord{}
	if v, ok := entry["kind"].(string); ok {
		rec.Kind = models.LocationKind(v)
	}
	if n, ok := asInt(entry["number"]); ok {
		rec.Number = &n
	}
	if v, ok := entry["title"].(string); ok {
		rec.Title = v
	}
	if v, ok := entry["url"].(string); ok {
		rec.URL = v
	}
	if raw, ok := entry["aliases"].([]interface{}); ok {
		for _, a := range raw {
			if s, ok := a.(string); ok {
				rec.Aliases = append(rec.Aliases, s)
			}
		}
	}
	return rec
}

// asInt accepts both YAML-decoded ints and JSON-decoded float64 numbers.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
