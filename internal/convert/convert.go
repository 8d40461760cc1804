package convert

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/geojson"
	"github.com/woozymasta/geoconv/internal/kml"
	"github.com/woozymasta/geoconv/internal/marker"
	"github.com/woozymasta/geoconv/internal/stream"
	"github.com/woozymasta/geoconv/internal/voxel"
)

// Stats counts what one conversion processed.
type Stats struct {
	Read    int `json:"read"`
	Written int `json:"written"`
	// Emitted counts rendered primitives; zero for document outputs.
	Emitted int `json:"emitted"`
}

type emitter interface {
	Emitted() int
}

// Run streams every feature of the input through the elevation edit and the
// projection into the output. A failing feature aborts the conversion: the
// writer is still finalized and closed, and the destination is left untouched.
func Run(ctx context.Context, o *Options) (stats Stats, err error) {
	start := time.Now()

	in, err := stream.Open(o.input)
	if err != nil {
		return stats, err
	}
	reader := o.newReader(in)
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", o.input).Msg("Failed to close file")
			if err == nil {
				err = closeErr
			}
		}
	}()

	out, err := stream.CreateAtomic(o.output)
	if err != nil {
		return stats, err
	}
	var preview *stream.AtomicFile
	if o.preview != "" {
		if preview, err = stream.CreateAtomic(o.preview); err != nil {
			out.Abort()
			return stats, err
		}
	}

	writer, err := o.newWriter(out, preview)
	if err != nil {
		abort(out, preview)
		return stats, err
	}

	err = pump(ctx, o, reader, writer, &stats)
	if closeErr := writer.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		abort(out, preview)
		return stats, err
	}

	if err = out.Commit(); err != nil {
		abort(nil, preview)
		return stats, err
	}
	if preview != nil {
		if err = preview.Commit(); err != nil {
			return stats, err
		}
	}
	if e, ok := writer.(emitter); ok {
		stats.Emitted = e.Emitted()
	}

	log.Info().
		Str("input", o.input).
		Str("output", o.output).
		Str("from", o.from.String()).
		Str("to", o.to.String()).
		Int("read", stats.Read).
		Int("written", stats.Written).
		Int("emitted", stats.Emitted).
		Dur("took", time.Since(start)).
		Msg("Conversion complete")
	return stats, nil
}

func pump(ctx context.Context, o *Options, r stream.Reader, w stream.Writer, stats *Stats) error {
	for r.HasNext() {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := r.Next()
		if err != nil {
			return err
		}
		stats.Read++

		if err := o.Transform(f); err != nil {
			return fmt.Errorf("feature %q: %w", f.ID, err)
		}
		if err := w.Write(f); err != nil {
			return fmt.Errorf("feature %q: %w", f.ID, err)
		}
		stats.Written++
		log.Trace().Str("id", f.ID).Str("geometry", f.Geometry.Type().String()).Msg("Feature converted")
	}
	return nil
}

// Transform applies the elevation edit and then the projection to the
// geometry of f.
func (o *Options) Transform(f *geo.Feature) error {
	g := f.Geometry
	var err error
	if !o.edit.IsZero() {
		if g, err = o.edit.Geometry(g); err != nil {
			return err
		}
	}
	if o.proj != nil {
		if g, err = o.proj.Geometry(g); err != nil {
			return err
		}
	}
	f.Geometry = g
	return nil
}

func (o *Options) newReader(in io.ReadCloser) stream.Reader {
	if o.from == FormatKML {
		return kml.NewReader(in, in, o.kmlRead)
	}
	return geojson.NewReader(in, in)
}

// newWriter builds the sink. Writers never close out; the caller commits it.
func (o *Options) newWriter(out io.Writer, preview *stream.AtomicFile) (stream.Writer, error) {
	switch o.to {
	case FormatGeoJSON:
		return geojson.NewWriter(out, nil, geojson.WriterOptions{Layout: o.layout, Precision: o.precision}), nil
	case FormatKML:
		return kml.NewWriter(out, nil, o.kmlWrite), nil
	case FormatBlueMap:
		return marker.NewWriter(out, nil, o.marker)
	case FormatSchematic:
		opts := o.schematic
		if preview != nil {
			opts.Preview = preview
		}
		return voxel.NewWriter(out, nil, opts)
	}
	return nil, invalid(fmt.Errorf("no writer for %q", o.to))
}

func abort(files ...*stream.AtomicFile) {
	for _, f := range files {
		if f != nil {
			f.Abort()
		}
	}
}
