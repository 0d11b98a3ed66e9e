package main

import (
	"context"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/internal/cli"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/spf13/cobra"
)

func recipeCmd(use, short string, setup func(c *cobra.Command), build func(cmd *cobra.Command) (func(ctx context.Context, cad *cadbridge.Automation) (cadbridge.RecipeResult, error), error)) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := build(cmd)
			if err != nil {
				return err
			}
			return cli.Recipe(cmd.Context(), options(cmd), fn)
		},
	}
	setup(c)
	return c
}

func floatFlag(cmd *cobra.Command, name string) float64 {
	v, _ := cmd.Flags().GetFloat64(name)
	return v
}

var boxCmd = recipeCmd("box", "Extrude a centered rectangle into a box",
	func(c *cobra.Command) {
		c.Flags().Float64("width", 50, "Width (mm)")
		c.Flags().Float64("height", 50, "Height (mm)")
		c.Flags().Float64("depth", 50, "Extrusion depth (mm)")
	},
	func(cmd *cobra.Command) (func(context.Context, *cadbridge.Automation) (cadbridge.RecipeResult, error), error) {
		w, h, d := floatFlag(cmd, "width"), floatFlag(cmd, "height"), floatFlag(cmd, "depth")
		return func(ctx context.Context, cad *cadbridge.Automation) (cadbridge.RecipeResult, error) {
			return cad.Box(ctx, w, h, d)
		}, nil
	})

var cylinderCmd = recipeCmd("cylinder", "Extrude a circle into a cylinder",
	func(c *cobra.Command) {
		c.Flags().Float64("diameter", 20, "Diameter (mm)")
		c.Flags().Float64("height", 40, "Height (mm)")
	},
	func(cmd *cobra.Command) (func(context.Context, *cadbridge.Automation) (cadbridge.RecipeResult, error), error) {
		d, h := floatFlag(cmd, "diameter"), floatFlag(cmd, "height")
		return func(ctx context.Context, cad *cadbridge.Automation) (cadbridge.RecipeResult, error) {
			return cad.Cylinder(ctx, d, h)
		}, nil
	})

var pipeCmd = recipeCmd("pipe", "Extrude two concentric circles into a tube",
	func(c *cobra.Command) {
		c.Flags().Float64("outer", 30, "Outer diameter (mm)")
		c.Flags().Float64("inner", 24, "Inner diameter (mm)")
		c.Flags().Float64("length", 100, "Length (mm)")
	},
	func(cmd *cobra.Command) (func(context.Context, *cadbridge.Automation) (cadbridge.RecipeResult, error), error) {
		o, i, l := floatFlag(cmd, "outer"), floatFlag(cmd, "inner"), floatFlag(cmd, "length")
		return func(ctx context.Context, cad *cadbridge.Automation) (cadbridge.RecipeResult, error) {
			return cad.Pipe(ctx, o, i, l)
		}, nil
	})

var plateCmd = recipeCmd("plate", "Extrude a plate and cut holes through it",
	func(c *cobra.Command) {
		c.Flags().Float64("length", 100, "Length (mm)")
		c.Flags().Float64("width", 60, "Width (mm)")
		c.Flags().Float64("thickness", 5, "Thickness (mm)")
		c.Flags().Float64("hole", 6, "Hole diameter (mm)")
		c.Flags().StringArray("at", nil, "Hole center x,y (mm, repeatable)")
	},
	func(cmd *cobra.Command) (func(context.Context, *cadbridge.Automation) (cadbridge.RecipeResult, error), error) {
		at, _ := cmd.Flags().GetStringArray("at")
		positions, err := parsePoints("at", at)
		if err != nil {
			return nil, err
		}
		l, w, t, h := floatFlag(cmd, "length"), floatFlag(cmd, "width"), floatFlag(cmd, "thickness"), floatFlag(cmd, "hole")
		return func(ctx context.Context, cad *cadbridge.Automation) (cadbridge.RecipeResult, error) {
			return cad.PlateWithHoles(ctx, l, w, t, h, positions)
		}, nil
	})

var revolveCmd = recipeCmd("revolve", "Revolve a closed polyline profile about an axis",
	func(c *cobra.Command) {
		c.Flags().StringArray("point", nil, "Profile vertex x,y (mm, repeatable, at least 3)")
		c.Flags().String("axis", "Y", "Revolution axis: X or Y")
		c.Flags().Float64("angle", 360, "Revolution angle (degrees)")
	},
	func(cmd *cobra.Command) (func(context.Context, *cadbridge.Automation) (cadbridge.RecipeResult, error), error) {
		pts, _ := cmd.Flags().GetStringArray("point")
		profile, err := parsePoints("point", pts)
		if err != nil {
			return nil, err
		}
		name, _ := cmd.Flags().GetString("axis")
		axis, err := domain.ParseAxis(name)
		if err != nil {
			return nil, err
		}
		angle := floatFlag(cmd, "angle")
		return func(ctx context.Context, cad *cadbridge.Automation) (cadbridge.RecipeResult, error) {
			return cad.Revolve(ctx, profile, axis, angle)
		}, nil
	})

func init() {
	rootCmd.AddCommand(boxCmd, cylinderCmd, pipeCmd, plateCmd, revolveCmd)
}
