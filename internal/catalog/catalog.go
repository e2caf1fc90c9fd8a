package catalog

import (
	"fmt"
	"os"

	"carcare/internal/models"

	"gopkg.in/yaml.v3"
)

// Catalog is the read-only list of services offered by the garage.
type Catalog struct {
	services []models.Service
	byID     map[string]models.Service
}

// New indexes services by id. Duplicate ids are rejected.
func New(services []models.Service) (*Catalog, error) {
	c := &Catalog{
		services: make([]models.Service, 0, len(services)),
		byID:     make(map[string]models.Service, len(services)),
	}
	for _, s := range services {
		if s.ID == "" {
			return nil, fmt.Errorf("catalog: service %q has no id", s.Name)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate service id %q", s.ID)
		}
		c.services = append(c.services, s)
		c.byID[s.ID] = s
	}
	return c, nil
}

// Load reads a YAML list of services. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc struct {
		Services []models.Service `yaml:"services"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Services) == 0 {
		return nil, fmt.Errorf("catalog %s has no services", path)
	}
	return New(doc.Services)
}

func (c *Catalog) All() []models.Service {
	out := make([]models.Service, len(c.services))
	copy(out, c.services)
	return out
}

func (c *Catalog) Lookup(id string) (models.Service, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// DefaultPrice is the catalog price for id, 0 when unknown.
func (c *Catalog) DefaultPrice(id string) int64 {
	return c.byID[id].Price
}

func (c *Catalog) ByCategory(category models.ServiceCategory) []models.Service {
	var out []models.Service
	for _, s := range c.services {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// HomeServiceEligible reports whether every id can be done at the customer's
// address. An empty selection is not eligible.
func (c *Catalog) HomeServiceEligible(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		s, ok := c.byID[id]
		if !ok || !s.HomeServiceAvailable {
			return false
		}
	}
	return true
}

// ServiceNames maps ids to display names; unknown ids are kept as-is.
func (c *Catalog) ServiceNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if s, ok := c.byID[id]; ok {
			names = append(names, s.Name)
			continue
		}
		names = append(names, id)
	}
	return names
}
