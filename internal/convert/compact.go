package convert

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/xml"

	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/stream"
)

const mimeXML = "text/xml"

// Compact rewrites an already converted document without insignificant
// whitespace. KML goes through the XML minifier; JSON documents
// (GeoJSON, marker sets, schematics) are compacted without touching numbers.
func Compact(input, output string) error {
	in, err := stream.Open(input)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", input).Msg("Failed to close file")
		}
	}()

	out, err := stream.CreateAtomic(output)
	if err != nil {
		return err
	}

	var before int64
	if st, err := in.Stat(); err == nil {
		before = st.Size()
	}

	buf := bufio.NewWriter(out)
	switch ext := strings.ToLower(filepath.Ext(input)); ext {
	case ".kml", ".xml":
		err = compactXML(buf, in)
	case ".json", ".geojson", ".gjson":
		err = compactJSON(buf, in)
	default:
		err = invalid(fmt.Errorf("cannot compact %q files", ext))
	}
	if err == nil {
		if err = buf.Flush(); err != nil {
			err = geo.Wrap(geo.ErrResourceIO, "write compact", err)
		}
	}
	if err != nil {
		out.Abort()
		return err
	}

	var after int64
	if st, statErr := out.Stat(); statErr == nil {
		after = st.Size()
	}
	if err := out.Commit(); err != nil {
		return err
	}

	log.Info().
		Str("input", input).
		Str("output", output).
		Int64("before", before).
		Int64("after", after).
		Msg("Document compacted")
	return nil
}

func compactXML(w io.Writer, r io.Reader) error {
	m := minify.New()
	m.AddFunc(mimeXML, xml.Minify)
	if err := m.Minify(mimeXML, w, r); err != nil {
		return geo.Wrap(geo.ErrMalformedSource, "compact kml", err)
	}
	return nil
}

func compactJSON(w io.Writer, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return geo.Wrap(geo.ErrResourceIO, "read json", err)
	}
	var dst bytes.Buffer
	if err := json.Compact(&dst, data); err != nil {
		return geo.Wrap(geo.ErrMalformedSource, "compact json", err)
	}
	dst.WriteByte('\n')
	if _, err := dst.WriteTo(w); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write json", err)
	}
	return nil
}
