// Package catalogue loads the immutable question and location tables.
package catalogue

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/beka-birhanu/geoduel-api/service/i"
)

var ErrEmptyCatalogue = errors.New("catalogue has no questions")

// Catalogue is a read-only in-memory question store. It is safe for
// concurrent use because it never changes after construction.
type Catalogue struct {
	questions map[int]dmn.Question
	ids       []int
	locations map[string]dmn.Coord
}

// New builds a catalogue and checks that every question points at a known
// location.
func New(locations map[string]dmn.Coord, questions []dmn.Question) (*Catalogue, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyCatalogue
	}

	c := &Catalogue{
		questions: make(map[int]dmn.Question, len(questions)),
		ids:       make([]int, 0, len(questions)),
		locations: make(map[string]dmn.Coord, len(locations)),
	}
	for name, loc := range locations {
		c.locations[name] = loc
	}
	for _, q := range questions {
		if _, ok := c.locations[q.Location]; !ok {
			return nil, fmt.Errorf("question %d: %w: %q", q.ID, dmn.ErrLocationNotFound, q.Location)
		}
		if _, dup := c.questions[q.ID]; dup {
			return nil, fmt.Errorf("question %d: duplicate id", q.ID)
		}
		c.questions[q.ID] = q
		c.ids = append(c.ids, q.ID)
	}
	slices.Sort(c.ids)
	return c, nil
}

// Question implements game.Catalogue.
func (c *Catalogue) Question(id int) (dmn.Question, bool) {
	q, ok := c.questions[id]
	return q, ok
}

// QuestionIDs implements game.Catalogue.
func (c *Catalogue) QuestionIDs() []int {
	return slices.Clone(c.ids)
}

// Location implements game.Catalogue.
func (c *Catalogue) Location(name string) (dmn.Coord, bool) {
	loc, ok := c.locations[name]
	return loc, ok
}

// Len returns the number of questions.
func (c *Catalogue) Len() int {
	return len(c.ids)
}

// Options locate the catalogue files.
type Options struct {
	LocationsPath string // rows: name,lat,lon
	QuestionsPath string // rows: id,image,location,category[,comment]
	ImageDir      string // prefix joined to every image file name
	Logger        i.Logger
}

// Load reads both tables from disk.
func Load(opts Options) (*Catalogue, error) {
	lf, err := os.Open(opts.LocationsPath)
	if err != nil {
		return nil, fmt.Errorf("opening locations: %w", err)
	}
	defer lf.Close()

	qf, err := os.Open(opts.QuestionsPath)
	if err != nil {
		return nil, fmt.Errorf("opening questions: %w", err)
	}
	defer qf.Close()

	locations, err := ReadLocations(lf)
	if err != nil {
		return nil, err
	}
	questions, err := ReadQuestions(qf, opts.ImageDir, opts.Logger)
	if err != nil {
		return nil, err
	}
	return New(locations, questions)
}

// ReadLocations parses "name,lat,lon" rows without a header.
func ReadLocations(r io.Reader) (map[string]dmn.Coord, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, fmt.Errorf("reading locations: %w", err)
	}

	locations := make(map[string]dmn.Coord, len(rows))
	for n, row := range rows {
		if len(row) != 3 {
			return nil, fmt.Errorf("locations row %d: want 3 columns, got %d", n+1, len(row))
		}
		lat, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("locations row %d: lat: %w", n+1, err)
		}
		lon, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("locations row %d: lon: %w", n+1, err)
		}
		locations[row[0]] = dmn.Coord{Lat: lat, Lon: lon}
	}
	return locations, nil
}

// ReadQuestions parses "id,image,location,category[,comment]" rows without a
// header. Rows with fewer than four columns are skipped with a warning.
func ReadQuestions(r io.Reader, imageDir string, logger i.Logger) ([]dmn.Question, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, fmt.Errorf("reading questions: %w", err)
	}

	questions := make([]dmn.Question, 0, len(rows))
	for n, row := range rows {
		if len(row) < 4 {
			if logger != nil {
				logger.Warning(fmt.Sprintf("questions row %d has fewer than 4 columns and is skipped: %v", n+1, row))
			}
			continue
		}
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("questions row %d: id: %w", n+1, err)
		}
		q := dmn.Question{
			ID:       id,
			ImageRef: path.Join(imageDir, row[1]),
			Location: row[2],
			Category: row[3],
		}
		if len(row) >= 5 {
			q.Comment = row[4]
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func readRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		for k := range row {
			row[k] = strings.TrimSpace(row[k])
		}
		if len(row) == 1 && row[0] == "" {
			continue
		}
		rows = append(rows, row)
	}
}
