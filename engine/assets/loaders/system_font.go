package loaders

import (
	"fmt"
	"os"

	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// SystemFont is a parsed TrueType or OpenType file, possibly a collection.
type SystemFont struct {
	Path       string
	Collection *opentype.Collection
	Faces      []string
}

// LoadSystemFont parses a .ttf, .otf or .ttc file and lists its faces.
func LoadSystemFont(path string) (*SystemFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	collection, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}

	out := &SystemFont{Path: path, Collection: collection}
	var buf sfnt.Buffer
	for i := 0; i < collection.NumFonts(); i++ {
		f, err := collection.Font(i)
		if err != nil {
			return nil, fmt.Errorf("font %s face %d: %w", path, i, err)
		}
		name, err := f.Name(&buf, sfnt.NameIDFull)
		if err != nil {
			name = fmt.Sprintf("face %d", i)
		}
		out.Faces = append(out.Faces, name)
	}
	return out, nil
}
