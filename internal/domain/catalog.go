package domain

import "time"

// CatalogSource tells where a catalog was loaded from.
type CatalogSource string

// Catalog sources.
const (
	SourceRemote CatalogSource = "remote"
	SourceLocal  CatalogSource = "local"
	SourceEmpty  CatalogSource = "empty"
)

// Catalog is the result of one load: the merged anime list and the top
// characters. An empty catalog means "no data", not an error.
type Catalog struct {
	Anime      []AnimeRecord     `json:"anime"`
	Characters []CharacterRecord `json:"characters"`
	Source     CatalogSource     `json:"source"`
	LoadID     string            `json:"load_id"`
	LoadedAt   time.Time         `json:"loaded_at"`
}

// Empty reports whether the catalog carries no records at all.
func (c *Catalog) Empty() bool {
	return c == nil || (len(c.Anime) == 0 && len(c.Characters) == 0)
}
