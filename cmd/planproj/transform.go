package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/chazu/planproj/pkg/geom"
	"github.com/chazu/planproj/pkg/ucs"
	"github.com/spf13/cobra"
)

var (
	fromFrame     string
	toFrame       string
	displacement  bool
	tileMode      bool
	ucsOrigin     []float64
	viewDir       []float64
	viewportScale float64
)

var transformCmd = &cobra.Command{
	Use:   "transform <x> <y> <z>",
	Short: "Convert a point or displacement between coordinate systems",
	Long: `Convert a point or displacement between coordinate systems.
Frames are wcs, ucs, dcs or psdcs (or their numbers 0-3). Paper space
(psdcs) only converts to and from dcs, and only when tile mode is off.

Use -- before negative coordinates.

Examples:
  planproj transform 1 2 3 --from ucs --to wcs --ucs-origin 10,0,0
  planproj transform --tile=false --from psdcs --to dcs -- 4 -2 0`,
	Args: cobra.ExactArgs(3),
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)

	f := transformCmd.Flags()
	f.StringVar(&fromFrame, "from", "wcs", "source frame")
	f.StringVar(&toFrame, "to", "wcs", "target frame")
	f.BoolVarP(&displacement, "displacement", "d", false, "treat the input as a displacement")
	f.BoolVar(&tileMode, "tile", true, "tile mode (overrides PLANPROJ_TILE_MODE)")
	f.Float64SliceVar(&ucsOrigin, "ucs-origin", nil, "origin of the user coordinate system (x,y,z)")
	f.Float64SliceVar(&viewDir, "view-dir", nil, "view direction, target to viewer (x,y,z)")
	f.Float64Var(&viewportScale, "viewport-scale", 1, "paper space units per display unit")
}

func runTransform(cmd *cobra.Command, args []string) error {
	var in [3]float64
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q: %w", a, err)
		}
		in[i] = v
	}

	from, err := ucs.ParseCode(fromFrame)
	if err != nil {
		return err
	}
	to, err := ucs.ParseCode(toFrame)
	if err != nil {
		return err
	}

	app := NewApp(cfg)
	if cmd.Flags().Changed("tile") {
		app.workspace.SetTileMode(tileMode)
	}
	if ucsOrigin != nil {
		o, err := vec3Flag("ucs-origin", ucsOrigin)
		if err != nil {
			return err
		}
		app.workspace.SetUCS(geom.NewFrame(o.AsPoint(), geom.ZAxis))
	}
	if viewDir != nil {
		d, err := vec3Flag("view-dir", viewDir)
		if err != nil {
			return err
		}
		app.workspace.SetView(geom.Origin, d, 0)
	}
	if viewportScale <= 0 {
		return fmt.Errorf("viewport scale must be positive, got %g", viewportScale)
	}
	app.workspace.SetViewport(ucs.Viewport{Scale: viewportScale})

	out, err := app.gateway.Transform(in, ucs.Named(from), ucs.Named(to), displacement)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%g %g %g\n", out[0], out[1], out[2])
	return nil
}

func vec3Flag(name string, v []float64) (geom.Vector3, error) {
	if len(v) != 3 {
		return geom.Vector3{}, fmt.Errorf("--%s needs 3 values, got %d", name, len(v))
	}
	return geom.Vector3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", d)
	}
	return d, nil
}
