package voxel

import (
	"bufio"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/stream"
)

// Schematic is the exported block list. Block positions are relative to
// Origin and index into Palette.
type Schematic struct {
	Origin  Pos      `json:"origin" yaml:"origin"`
	Size    Pos      `json:"size" yaml:"size"`
	Palette []string `json:"palette" yaml:"palette"`
	Blocks  []Block  `json:"blocks" yaml:"blocks"`
}

// Block is one palette entry placed at a relative position.
type Block struct {
	X     int `json:"x" yaml:"x"`
	Y     int `json:"y" yaml:"y"`
	Z     int `json:"z" yaml:"z"`
	State int `json:"state" yaml:"state"`
}

// NewSchematic snapshots a buffer.
func NewSchematic(b *Buffer) *Schematic {
	s := &Schematic{Palette: []string{}, Blocks: []Block{}}
	lo, hi, ok := b.Bounds()
	if !ok {
		return s
	}
	s.Origin = lo
	s.Size = Pos{X: hi.X - lo.X + 1, Y: hi.Y - lo.Y + 1, Z: hi.Z - lo.Z + 1}

	index := make(map[string]int)
	for _, p := range b.Positions() {
		pattern, _ := b.Get(p)
		state, ok := index[pattern]
		if !ok {
			state = len(s.Palette)
			index[pattern] = state
			s.Palette = append(s.Palette, pattern)
		}
		s.Blocks = append(s.Blocks, Block{X: p.X - lo.X, Y: p.Y - lo.Y, Z: p.Z - lo.Z, State: state})
	}
	return s
}

// Encode writes the schematic as JSON or YAML.
func (s *Schematic) Encode(w io.Writer, format string, layout stream.Layout) error {
	buf := bufio.NewWriter(w)

	var err error
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(buf)
		indent := layout.Indent
		if indent <= 0 {
			indent = stream.DefaultIndent
		}
		enc.SetIndent(indent)
		err = enc.Encode(s)
		if err == nil {
			err = enc.Close()
		}
	default:
		enc := json.NewEncoder(buf)
		if !layout.Compact {
			enc.SetIndent("", layout.IndentString())
		}
		err = enc.Encode(s)
	}
	if err != nil {
		return geo.Wrap(geo.ErrUnsupportedConversion, "encode schematic", err)
	}
	if err := buf.Flush(); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write schematic", err)
	}
	return nil
}
