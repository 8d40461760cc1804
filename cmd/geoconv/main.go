package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/woozymasta/geoconv/internal/config"
	"github.com/woozymasta/geoconv/internal/convert"
	"github.com/woozymasta/geoconv/internal/logger"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	GeoJSON   GeoJSONCommand   `command:"geojson"   description:"Convert to a GeoJSON FeatureCollection"`
	KML       KMLCommand       `command:"kml"       description:"Convert to a KML document"`
	BlueMap   BlueMapCommand   `command:"bluemap"   description:"Render features as a web map marker set"`
	Schematic SchematicCommand `command:"schematic" description:"Render features as a block schematic"`
	Compact   CompactCommand   `command:"compact"   description:"Strip insignificant whitespace from a converted document"`
}

func main() {
	var opts Options
	var runErr error

	parser := flags.NewParser(&opts, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		opts.Logger.Setup()
		if cmd != nil {
			runErr = cmd.Execute(args)
		}
		return nil
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

// run converts with signal aware cancellation.
func run(c *Common, to convert.Format, apply func(*config.Config)) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if apply != nil {
		apply(cfg)
	}

	req := convert.Request{Config: cfg, Input: c.File, Output: c.Output, To: to}
	if c.From != "" {
		if req.From, err = convert.ParseFormat(c.From); err != nil {
			return err
		}
	}
	o, err := convert.NewOptions(req)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = convert.Run(ctx, o)
	return err
}
