package catalogue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	locationsCSV = "Paris,0.49,0.51\nLima, 0.31 ,0.62\n\n"
	questionsCSV = "0,eiffel.jpg,Paris,E\n1,plaza.jpg,Lima,W,Plaza de Armas\n2,broken.jpg\n"
)

func TestReadLocations(t *testing.T) {
	locations, err := ReadLocations(strings.NewReader(locationsCSV))
	require.NoError(t, err)
	assert.Equal(t, dmn.Coord{Lat: 0.49, Lon: 0.51}, locations["Paris"])
	assert.Equal(t, dmn.Coord{Lat: 0.31, Lon: 0.62}, locations["Lima"])

	_, err = ReadLocations(strings.NewReader("Paris,north,0.5\n"))
	assert.Error(t, err)
}

func TestReadQuestions(t *testing.T) {
	questions, err := ReadQuestions(strings.NewReader(questionsCSV), "images", nil)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	assert.Equal(t, dmn.Question{ID: 0, ImageRef: "images/eiffel.jpg", Location: "Paris", Category: "E"}, questions[0])
	assert.Equal(t, "Plaza de Armas", questions[1].Comment)
}

func TestNew(t *testing.T) {
	locations := map[string]dmn.Coord{"Paris": {Lat: 0.5, Lon: 0.5}}

	t.Run("unknown location is rejected", func(t *testing.T) {
		_, err := New(locations, []dmn.Question{{ID: 3, Location: "Atlantis"}})
		assert.ErrorIs(t, err, dmn.ErrLocationNotFound)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		_, err := New(locations, []dmn.Question{{ID: 1, Location: "Paris"}, {ID: 1, Location: "Paris"}})
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := New(locations, nil)
		assert.ErrorIs(t, err, ErrEmptyCatalogue)
	})

	t.Run("ids are sorted and owned by the caller", func(t *testing.T) {
		c, err := New(locations, []dmn.Question{{ID: 9, Location: "Paris"}, {ID: 2, Location: "Paris"}})
		require.NoError(t, err)
		ids := c.QuestionIDs()
		assert.Equal(t, []int{2, 9}, ids)
		ids[0] = 100
		assert.Equal(t, []int{2, 9}, c.QuestionIDs())
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	locPath := filepath.Join(dir, "locations.csv")
	quePath := filepath.Join(dir, "questions.csv")
	require.NoError(t, os.WriteFile(locPath, []byte(locationsCSV), 0o600))
	require.NoError(t, os.WriteFile(quePath, []byte(questionsCSV), 0o600))

	c, err := Load(Options{LocationsPath: locPath, QuestionsPath: quePath, ImageDir: "images/"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	loc, ok := c.Location("Lima")
	assert.True(t, ok)
	assert.Equal(t, 0.62, loc.Lon)

	_, err = Load(Options{LocationsPath: filepath.Join(dir, "missing.csv"), QuestionsPath: quePath})
	assert.Error(t, err)
}
