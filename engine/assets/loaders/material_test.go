package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/kiln/engine/math"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMaterial(t *testing.T) {
	path := writeTemp(t, "sun.kmt", `# sunlight
name = sun
light_colour = 1 0.5 0.25
light_direction = 0 -2 0
light_position = 1 2 3
`)
	m, err := LoadMaterial(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "sun" || m.LightColour != math.NewVec3(1, 0.5, 0.25) {
		t.Fatalf("material = %+v", m)
	}
	if !m.LightDirection.Compare(math.NewVec3(0, -1, 0), 1e-6) {
		t.Fatalf("direction not normalized: %+v", m.LightDirection)
	}
}

func TestLoadMaterialInvalid(t *testing.T) {
	tests := map[string]string{
		"missing name":    "light_colour = 1 1 1\n",
		"colour range":    "name = x\nlight_colour = 2 1 1\n",
		"zero direction":  "name = x\nlight_direction = 0 0 0\n",
		"short component": "name = x\nlight_position = 1 2\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadMaterial(writeTemp(t, "m.kmt", doc)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadSPIRV(t *testing.T) {
	good := writeTemp(t, "ok.spv", string([]byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0}))
	words, err := LoadSPIRV(good)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 || words[0] != 0x07230203 {
		t.Fatalf("words = %#x", words)
	}

	if _, err := LoadSPIRV(writeTemp(t, "odd.spv", "abcde")); err == nil {
		t.Fatal("accepted a length that is not a multiple of 4")
	}
	if _, err := LoadSPIRV(writeTemp(t, "bad.spv", "abcd")); err == nil {
		t.Fatal("accepted a bad magic number")
	}
}
