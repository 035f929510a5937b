package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed genres.yaml
var genresYAML []byte

type genreFile struct {
	Genres []Genre `yaml:"genres"`
}

// Genre is one entry of the static genre table.
type Genre struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

var genreTable = mustLoadGenres(genresYAML)

func loadGenres(data []byte) (map[int]string, error) {
	var f genreFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse genre table: %w", err)
	}
	out := make(map[int]string, len(f.Genres))
	for _, g := range f.Genres {
		if _, dup := out[g.ID]; dup {
			return nil, fmt.Errorf("duplicate genre id %d", g.ID)
		}
		out[g.ID] = g.Name
	}
	return out, nil
}

func mustLoadGenres(data []byte) map[int]string {
	table, err := loadGenres(data)
	if err != nil {
		panic(err)
	}
	return table
}

// GenreName returns the display name of a genre id.
func GenreName(id int) (string, bool) {
	name, ok := genreTable[id]
	return name, ok
}
