package garden

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlant() Plant {
	return Plant{
		Name: "Sage", LatinName: "Salvia officinalis", Category: "Herb", Icon: "🌿",
		Image: "images/x.jpg", Sunlight: "Full sun", Water: "Low", Season: "Perennial",
		Difficulty: "Easy", Location: "Border", Spacing: "45 cm", Soil: "Light", Harvest: "Any time",
	}
}

func TestLoad_BuiltInCatalog(t *testing.T) {
	c, warnings, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	names := map[string]bool{}
	for _, p := range c.Plants() {
		names[p.Name] = true
	}
	for _, herb := range []string{"Rosemary", "Thyme", "Mint", "Chives"} {
		assert.True(t, names[herb], herb)
	}
	assert.Contains(t, c.LocalImages(), "images/herbs/rosemary.jpg")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Plant)
		wantErr bool
	}{
		{"local image accepted", func(p *Plant) {}, false},
		{"https image accepted", func(p *Plant) { p.Image = "https://example.com/sage.jpg" }, false},
		{"missing sunlight rejected", func(p *Plant) { p.Sunlight = "" }, true},
		{"blank harvest rejected", func(p *Plant) { p.Harvest = "   " }, true},
		{"notes optional", func(p *Plant) { p.Notes = "" }, false},
		{"bare filename rejected", func(p *Plant) { p.Image = "sage.jpg" }, true},
		{"prefix only rejected", func(p *Plant) { p.Image = "images/" }, true},
		{"traversal rejected", func(p *Plant) { p.Image = "images/../../secret" }, true},
		{"url without host rejected", func(p *Plant) { p.Image = "https://" }, true},
		{"other scheme rejected", func(p *Plant) { p.Image = "ftp://example.com/a.jpg" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlant()
			tt.mutate(&p)
			_, err := Validate([]Plant{p}, "")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_MissingLocalFileIsWarning(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "x.jpg"), []byte("x"), 0o644))

	present := validPlant()
	missing := validPlant()
	missing.Name = "Dill"
	missing.Image = "images/dill.jpg"
	remote := validPlant()
	remote.Image = "https://example.com/a.jpg"

	warnings, err := Validate([]Plant{present, missing, remote}, dir)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Dill")
}

func TestParse(t *testing.T) {
	_, _, err := Parse([]byte("not: [valid"), "")
	assert.Error(t, err)

	_, _, err = Parse([]byte("[]"), "")
	assert.Error(t, err)

	_, _, err = Parse([]byte(`- name: Sage
  latin_name: Salvia officinalis
  category: Herb
  icon: x
  image: images/sage.jpg
  water: Low
  season: Perennial
  difficulty: Easy
  location: Border
  spacing: 45 cm
  soil: Light
  harvest: Any
`), "")
	assert.ErrorContains(t, err, "sunlight")
}

func TestPlants_ReturnsCopy(t *testing.T) {
	c, _, err := Load("")
	require.NoError(t, err)

	plants := c.Plants()
	plants[0].Name = "changed"
	assert.NotEqual(t, "changed", c.Plants()[0].Name)
}
