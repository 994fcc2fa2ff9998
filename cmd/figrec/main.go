// Package main provides the figrec command line tool for working with
// figure recipes: replaying them to images, validating them against
// reference renders, and inspecting their contents.
package main

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	figrec "github.com/figdraw/figrec"
	"github.com/figdraw/figrec/record"
	"github.com/figdraw/figrec/replay"
	"github.com/figdraw/figrec/surface"
	_ "github.com/figdraw/figrec/surface/gonumplot"
	"github.com/figdraw/figrec/validate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "figrec",
		Short: "Record, replay and validate figure recipes",
		Long: `figrec works with figure recipe documents: YAML files that record
every drawing call of a figure so it can be reproduced and checked later.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(replayCmd(), validateCmd(), infoCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func replayCmd() *cobra.Command {
	var (
		output  string
		backend string
		dpi     float64
		only    []string
		noDecor bool
	)
	cmd := &cobra.Command{
		Use:   "replay [recipe.yaml]",
		Short: "Reproduce a recipe and write the rendered image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fig, err := figrec.LoadRecipe(args[0])
			if err != nil {
				return err
			}
			opts := []replay.Option{}
			if backend != "" {
				opts = append(opts, replay.WithBackend(backend))
			}
			if len(only) > 0 {
				opts = append(opts, replay.WithOnly(only...))
			}
			if noDecor {
				opts = append(opts, replay.WithoutDecorations())
			}
			rep, err := figrec.Reproduce(fig, opts...)
			if err != nil {
				return err
			}
			for _, w := range rep.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			img, err := rep.Image(dpi)
			if err != nil {
				return err
			}
			if output == "" {
				stem := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				output = stem + ".png"
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := png.Encode(f, img); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output image path (default: recipe path with .png)")
	cmd.Flags().StringVar(&backend, "backend", "", "Surface backend name")
	cmd.Flags().Float64Var(&dpi, "dpi", 0, "Raster resolution (default: recorded dpi)")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Replay only these call ids")
	cmd.Flags().BoolVar(&noDecor, "skip-decorations", false, "Skip labels, titles and legends")
	return cmd
}

func validateCmd() *cobra.Command {
	var (
		maxMSE  float64
		backend string
		dpi     float64
	)
	cmd := &cobra.Command{
		Use:   "validate [recipe.yaml] [reference.png]",
		Short: "Check that a recipe reproduces its reference image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []validate.Option{validate.WithMaxMSE(maxMSE)}
			if backend != "" {
				opts = append(opts, validate.WithBackend(backend))
			}
			if dpi > 0 {
				opts = append(opts, validate.WithDPI(dpi))
			}
			res, err := figrec.Validate(args[0], args[1], opts...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.SameSize {
				fmt.Fprintf(out, "INVALID: %s\n", res.Message)
				os.Exit(1)
			}
			fmt.Fprintf(out, "mse      %.4f\n", res.MSE)
			fmt.Fprintf(out, "psnr     %.2f dB\n", res.PSNR)
			fmt.Fprintf(out, "max diff %.0f\n", res.MaxDiff)
			if !res.Valid {
				fmt.Fprintf(out, "INVALID: mse above %.2f\n", maxMSE)
				os.Exit(1)
			}
			fmt.Fprintln(out, "VALID")
			return nil
		},
	}
	cmd.Flags().Float64Var(&maxMSE, "threshold", 100, "Largest acceptable mean squared error")
	cmd.Flags().StringVar(&backend, "backend", "", "Surface backend name")
	cmd.Flags().Float64Var(&dpi, "dpi", 0, "Raster resolution (default: recorded dpi)")
	return cmd
}

func infoCmd() *cobra.Command {
	var listBackends bool
	cmd := &cobra.Command{
		Use:   "info [recipe.yaml]",
		Short: "Summarize a recipe document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if listBackends {
				for _, name := range surface.List() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("recipe path required")
			}
			fig, err := figrec.LoadRecipe(args[0])
			if err != nil {
				return err
			}
			printInfo(out, fig)
			return nil
		},
	}
	cmd.Flags().BoolVar(&listBackends, "backends", false, "List registered surface backends")
	return cmd
}

func printInfo(out io.Writer, fig *record.FigureRecord) {
	rows, cols := fig.GridShape()
	fmt.Fprintf(out, "id       %s\n", fig.ID)
	fmt.Fprintf(out, "created  %s\n", fig.Created)
	fmt.Fprintf(out, "version  %s\n", fig.Version)
	fmt.Fprintf(out, "grid     %dx%d\n", rows, cols)
	fmt.Fprintf(out, "figsize  %gx%g in @ %g dpi\n", fig.FigSize[0], fig.FigSize[1], fig.DPI)
	if fig.SupTitle != nil {
		fmt.Fprintf(out, "suptitle %q\n", fig.SupTitle.Text)
	}

	counts := make(map[string]int)
	total := 0
	for _, ax := range fig.SortedAxes() {
		for _, call := range ax.AllCalls() {
			counts[call.Function]++
			total++
		}
	}
	fmt.Fprintf(out, "calls    %d\n", total)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-14s %d\n", name, counts[name])
	}
}
