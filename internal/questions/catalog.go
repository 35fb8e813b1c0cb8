package questions

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
)

//go:embed questionsData.json
var catalogFS embed.FS

var ErrQuestionNotFound = errors.New("question not found")

// Meta is the lightweight card shown in question listings.
type Meta struct {
	Tag        string `json:"tag"`
	Difficulty string `json:"difficulty"`
	Duration   string `json:"duration"`
	Likes      int    `json:"likes"`
}

// Example is a worked input/output pair.
type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// Data is the full problem statement.
type Data struct {
	Title       string            `json:"title"`
	Description []string          `json:"description"`
	Examples    []Example         `json:"examples"`
	Constraints []string          `json:"constraints"`
	StarterCode map[string]string `json:"starterCode"`
}

// Question is one catalog entry, keyed by its display name.
type Question struct {
	Name string `json:"name"`
	Meta Meta   `json:"meta"`
	Data Data   `json:"data"`
}

// MetaCard is the listing payload: the name plus the meta fields inlined.
type MetaCard struct {
	Name string `json:"name"`
	Meta
}

// Catalog is the read-only question set, loaded once at startup and safe
// for concurrent reads without synchronization.
type Catalog struct {
	ordered []string
	byName  map[string]*Question
}

// questionsData.json keeps the original file shape: an array of single-key
// objects, each key being the question name.
type catalogEntry map[string]struct {
	Meta Meta `json:"meta"`
	Data Data `json:"data"`
}

// NewCatalog loads the embedded catalog.
func NewCatalog() (*Catalog, error) {
	raw, err := catalogFS.ReadFile("questionsData.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read question catalog: %w", err)
	}
	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (*Catalog, error) {
	var entries []catalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse question catalog: %w", err)
	}

	c := &Catalog{byName: make(map[string]*Question, len(entries))}
	for _, entry := range entries {
		for name, body := range entry {
			if _, dup := c.byName[name]; dup {
				return nil, fmt.Errorf("duplicate question name %q in catalog", name)
			}
			q := &Question{Name: name, Meta: body.Meta, Data: body.Data}
			c.byName[name] = q
			c.ordered = append(c.ordered, name)
		}
	}
	return c, nil
}

// List returns metadata cards in catalog order.
func (c *Catalog) List() []MetaCard {
	cards := make([]MetaCard, 0, len(c.ordered))
	for _, name := range c.ordered {
		cards = append(cards, MetaCard{Name: name, Meta: c.byName[name].Meta})
	}
	return cards
}

// Get looks a question up by name.
func (c *Catalog) Get(name string) (*Question, error) {
	q, ok := c.byName[name]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	return q, nil
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int { return len(c.byName) }
