// Package registry holds the per-generation register catalogs: the
// mapping from semantic field names to register addresses, widths,
// access modes and value ranges.
//
// Catalogs are plain data. They are built once at package init, checked
// for address-range collisions, and shared read-only by every
// controller instance. Adding a hardware generation means adding a
// table, not new logic.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/haoyan-ts/inspire-api/pkg/hand"
	"github.com/haoyan-ts/inspire-api/pkg/hand/handerr"
)

// Access is the register access mode.
type Access uint8

const (
	ReadOnly Access = iota
	WriteOnly
	ReadWrite
)

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "ro"
	case WriteOnly:
		return "wo"
	case ReadWrite:
		return "rw"
	default:
		return "??"
	}
}

// Readable reports whether the register may be read.
func (a Access) Readable() bool { return a != WriteOnly }

// Writable reports whether the register may be written.
func (a Access) Writable() bool { return a != ReadOnly }

// Encoding selects how register words map to semantic values.
type Encoding uint8

const (
	// EncInt16 is one 16-bit word per unit (joint commands, joint
	// readings, scalar parameters).
	EncInt16 Encoding = iota
	// EncByte packs two byte-wide values into each register, low
	// byte first (temperature, error, status, current).
	EncByte
	// EncTactile is a 2D matrix of 16-bit pressure samples.
	EncTactile
)

// RegisterEntry describes one semantic field of the register map.
type RegisterEntry struct {
	Name             string
	Base             uint16
	RegistersPerUnit uint8
	UnitCount        uint16
	Access           Access
	Encoding         Encoding

	// Value range for writable fields. Zero for read-only fields
	// whose raw words are returned as-is.
	Min int32
	Max int32

	// AllowHold admits the -1 placeholder ("leave joint unchanged")
	// on writes.
	AllowHold bool

	// Tactile shape. Rows/Cols are zero for non-tactile entries.
	// ColumnMajor marks regions transmitted column-first (palm).
	Rows        int
	Cols        int
	ColumnMajor bool
}

// Words returns the total register count of the field.
func (e RegisterEntry) Words() uint16 {
	return uint16(e.RegistersPerUnit) * e.UnitCount
}

// ValueCount returns how many semantic values the field carries.
func (e RegisterEntry) ValueCount() int {
	if e.Encoding == EncByte {
		return int(e.Words()) * 2
	}
	return int(e.Words())
}

// end returns the first address past the entry's register range.
func (e RegisterEntry) end() uint32 {
	return uint32(e.Base) + uint32(e.Words())
}

// Catalog is the immutable register map of one hardware generation.
type Catalog struct {
	generation hand.Generation
	entries    map[string]RegisterEntry
	names      []string
	maxWords   uint16
}

// MustBuild constructs a catalog and panics on overlapping address
// ranges or duplicate names. A collision is a programmer error in the
// table itself; the process must not start with a broken map.
func MustBuild(generation hand.Generation, entries []RegisterEntry) *Catalog {
	c, err := build(generation, entries)
	if err != nil {
		panic(fmt.Sprintf("registry: %s catalog: %v", generation, err))
	}
	return c
}

func build(generation hand.Generation, entries []RegisterEntry) (*Catalog, error) {
	c := &Catalog{
		generation: generation,
		entries:    make(map[string]RegisterEntry, len(entries)),
	}

	sorted := make([]RegisterEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Base < sorted[j].Base })

	for i, e := range sorted {
		if e.Name == "" {
			return nil, fmt.Errorf("entry at base %d has no name", e.Base)
		}
		if e.RegistersPerUnit == 0 || e.UnitCount == 0 {
			return nil, fmt.Errorf("%s: zero-width register range", e.Name)
		}
		if _, dup := c.entries[e.Name]; dup {
			return nil, fmt.Errorf("duplicate entry %s", e.Name)
		}
		if i > 0 {
			prev := sorted[i-1]
			if uint32(e.Base) < prev.end() {
				return nil, fmt.Errorf("%s [%d, %d) overlaps %s [%d, %d)",
					e.Name, e.Base, e.end(), prev.Name, prev.Base, prev.end())
			}
		}
		c.entries[e.Name] = e
		c.names = append(c.names, e.Name)
		if w := e.Words(); w > c.maxWords {
			c.maxWords = w
		}
	}
	sort.Strings(c.names)
	return c, nil
}

// Generation returns the hardware generation the catalog describes.
func (c *Catalog) Generation() hand.Generation { return c.generation }

// Lookup resolves a field name to its register entry.
func (c *Catalog) Lookup(name string) (RegisterEntry, error) {
	e, ok := c.entries[name]
	if !ok {
		return RegisterEntry{}, fmt.Errorf("%w: %s on %s", handerr.ErrUnsupportedField, name, c.generation)
	}
	return e, nil
}

// Has reports whether the field exists for this generation.
func (c *Catalog) Has(name string) bool {
	_, ok := c.entries[name]
	return ok
}

// Names returns all field names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// MaxWords returns the largest register span of any entry. It bounds
// the maximum serial frame payload the parser will accept.
func (c *Catalog) MaxWords() uint16 { return c.maxWords }

var (
	catalogsOnce sync.Once
	catalogs     map[hand.Generation]*Catalog
)

func initCatalogs() {
	catalogs = map[hand.Generation]*Catalog{
		hand.Gen3: MustBuild(hand.Gen3, gen3Entries),
		hand.Gen4: MustBuild(hand.Gen4, gen4Entries),
	}
}

// For returns the shared catalog for a generation.
func For(generation hand.Generation) (*Catalog, error) {
	catalogsOnce.Do(initCatalogs)
	c, ok := catalogs[generation]
	if !ok {
		return nil, fmt.Errorf("unsupported hardware generation: %d", generation)
	}
	return c, nil
}
