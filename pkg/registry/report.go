package registry

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReportEntry is one catalog row of the verification report.
type ReportEntry struct {
	Name     string   `yaml:"name"`
	Category Category `yaml:"category"`
	Base     uint16   `yaml:"base"`
	Words    uint16   `yaml:"words"`
	Access   string   `yaml:"access"`
	Shape    string   `yaml:"shape,omitempty"`
}

// Report is a read-only dump of a catalog for hardware-verification
// tooling. It is not a protocol operation; nothing touches the wire.
type Report struct {
	Generation string        `yaml:"generation"`
	Entries    []ReportEntry `yaml:"entries"`
}

// Dump builds the verification report for the catalog.
func (c *Catalog) Dump() Report {
	r := Report{Generation: c.generation.String()}
	for _, name := range c.Names() {
		e := c.entries[name]
		re := ReportEntry{
			Name:     e.Name,
			Category: Categorize(e.Name),
			Base:     e.Base,
			Words:    e.Words(),
			Access:   e.Access.String(),
		}
		if e.Encoding == EncTactile {
			re.Shape = fmt.Sprintf("%dx%d", e.Rows, e.Cols)
		}
		r.Entries = append(r.Entries, re)
	}
	return r
}

// YAML renders the report as YAML.
func (r Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// Text renders the report as a fixed-width table grouped by category.
func (r Report) Text() string {
	byCategory := map[Category][]ReportEntry{}
	for _, e := range r.Entries {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)

	var b strings.Builder
	fmt.Fprintf(&b, "REGISTER MAP (%s)\n", r.Generation)
	for _, c := range categories {
		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(strings.ReplaceAll(c, "_", " ")))
		for _, e := range byCategory[Category(c)] {
			shape := e.Shape
			if shape == "" {
				shape = "-"
			}
			fmt.Fprintf(&b, "  %-25s addr %5d (0x%04X)  words %3d  %s  %s\n",
				e.Name, e.Base, e.Base, e.Words, e.Access, shape)
		}
	}
	return b.String()
}
