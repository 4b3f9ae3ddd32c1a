// Package catalog loads the location→roles dataset consumed by the game.
// The file is read once at startup and shared read-only across all rooms.
package catalog

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
)

// Catalog is an immutable mapping from location name to its role list.
type Catalog struct {
	roles map[string][]string
	names []string // sorted, for the scratch-off list
}

// Load reads a CSV file with a header row containing "location" and "roles"
// columns. The roles column is a comma-delimited list; duplicate role names
// within a location are dropped, keeping the first occurrence.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse %s: missing header row", path)
	}

	locCol, rolesCol := -1, -1
	for i, name := range records[0] {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "location":
			locCol = i
		case "roles":
			rolesCol = i
		}
	}
	if locCol < 0 || rolesCol < 0 {
		return nil, fmt.Errorf("parse %s: header must contain location and roles columns", path)
	}

	c := &Catalog{roles: make(map[string][]string)}
	for _, row := range records[1:] {
		if locCol >= len(row) || rolesCol >= len(row) {
			continue
		}
		location := strings.TrimSpace(row[locCol])
		if location == "" {
			continue
		}

		seen := make(map[string]bool)
		var roles []string
		for _, role := range strings.Split(row[rolesCol], ",") {
			role = strings.TrimSpace(role)
			if role == "" || seen[role] {
				continue
			}
			seen[role] = true
			roles = append(roles, role)
		}
		if _, dup := c.roles[location]; !dup {
			c.names = append(c.names, location)
		}
		c.roles[location] = roles
	}
	sort.Strings(c.names)

	return c, nil
}

// Len reports the number of locations.
func (c *Catalog) Len() int { return len(c.names) }

// Locations returns all location names in sorted order. The caller must not
// modify the returned slice.
func (c *Catalog) Locations() []string { return c.names }

// Roles returns the role list for a location.
func (c *Catalog) Roles(location string) ([]string, bool) {
	roles, ok := c.roles[location]
	return roles, ok
}

// Contains reports whether the location exists in the catalog.
func (c *Catalog) Contains(location string) bool {
	_, ok := c.roles[location]
	return ok
}

// Pick selects one location uniformly at random.
func (c *Catalog) Pick(rng *rand.Rand) string {
	return c.names[rng.Intn(len(c.names))]
}
