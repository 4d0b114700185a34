package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nvalette/relight/internal/auth"
	"github.com/nvalette/relight/internal/config"
	"github.com/nvalette/relight/internal/effect"
	"github.com/nvalette/relight/internal/gemini"
	"github.com/nvalette/relight/internal/imagefile"
)

var (
	effectFlag      string
	intensityFlag   int
	directionFlag   string
	outDirFlag      string
	pickFlag        bool
	concurrencyFlag int
)

var applyCmd = &cobra.Command{
	Use:   "apply [files...]",
	Short: "Apply one lighting effect to one or more photos",
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&effectFlag, "effect", "e", "", "Lighting effect to apply (required)")
	applyCmd.Flags().IntVarP(&intensityFlag, "intensity", "i", 2, "Effect intensity 1-3 (additive effects only)")
	applyCmd.Flags().StringVarP(&directionFlag, "direction", "d", "center", "Light direction: top, left, center, right, bottom")
	applyCmd.Flags().StringVarP(&outDirFlag, "out-dir", "o", "", "Directory for results (default: next to each input)")
	applyCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose files with a native file dialog")
	applyCmd.Flags().IntVar(&concurrencyFlag, "concurrency", 2, "Maximum photos processed in parallel")
	applyCmd.MarkFlagRequired("effect")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := effect.Config{
		Effect:    effect.Effect(effectFlag),
		Intensity: intensityFlag,
		Direction: effect.Direction(directionFlag),
	}.Normalize()
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 && pickFlag {
		files, err = pickFiles()
		if err != nil {
			return err
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files; pass paths or use --pick")
	}

	appCfg := config.Load()
	apiKey, err := auth.GetAPIKey()
	if err != nil {
		return err
	}
	client := gemini.NewClient(apiKey, appCfg.Model, appCfg.RequestsPerMinute)

	if outDirFlag != "" {
		if err := os.MkdirAll(outDirFlag, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(concurrencyFlag)

	for _, path := range files {
		g.Go(func() error {
			return applyOne(ctx, client, cfg, path)
		})
	}
	return g.Wait()
}

// applyOne relights a single photo and writes the result next to the input
// (or into --out-dir) as <stem>-<effect>.png.
func applyOne(ctx context.Context, client *gemini.Client, cfg effect.Config, path string) error {
	img, err := imagefile.Load(path)
	if err != nil {
		return err
	}

	res, err := client.Relight(ctx, img, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	outName := fmt.Sprintf("%s-%s.png", img.Stem(), cfg.Effect.Slug())
	outPath := filepath.Join(filepath.Dir(path), outName)
	if outDirFlag != "" {
		outPath = filepath.Join(outDirFlag, outName)
	}

	if err := os.WriteFile(outPath, res.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	log.Info().Str("input", path).Str("output", outPath).Msg("Photo relit")
	fmt.Printf("  %s -> %s\n", path, outPath)
	return nil
}

// pickFiles opens a native file dialog for selecting photos.
func pickFiles() ([]string, error) {
	files, err := zenity.SelectFileMultiple(
		zenity.Title("Choose photos to relight"),
		zenity.FileFilters{
			{
				Name:     "Images",
				Patterns: []string{"*.jpg", "*.jpeg", "*.png", "*.gif", "*.webp"},
			},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil, fmt.Errorf("file selection canceled")
		}
		return nil, fmt.Errorf("file selection failed: %w", err)
	}
	return files, nil
}
