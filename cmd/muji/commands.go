package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-muji/internal/config"
	"github.com/justestif/go-muji/internal/di"
	"github.com/justestif/go-muji/internal/geo"
	"github.com/justestif/go-muji/internal/pipeline"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "muji",
		Short:         "Emotion journal with weather-aware music recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file with settings")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newRecommendCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts, true)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, cleanup, err := di.InitializeApp(ctx, cfg)
			if err != nil {
				return fmt.Errorf("initializing app: %w", err)
			}
			defer cleanup()

			err = app.Server.Run(ctx)
			app.Logger.Info("waiting for background address lookups")
			app.Emotions.Wait()
			return err
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the storage schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts, false)
			if err != nil {
				return err
			}

			repos, cleanup, err := di.InitializeStorage(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("opening storage: %w", err)
			}
			defer cleanup()

			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s).\n", repos.Backend)
			return nil
		},
	}
}

type recommendOptions struct {
	lat  float64
	lon  float64
	mood string
}

func newRecommendCmd(opts *rootOptions) *cobra.Command {
	ro := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print song recommendations for a mood at a location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts, true)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, cleanup, err := di.InitializeApp(ctx, cfg)
			if err != nil {
				return fmt.Errorf("initializing app: %w", err)
			}
			defer cleanup()

			result, err := app.Pipeline.Run(ctx, pipeline.Input{
				Mood:     ro.mood,
				Location: &geo.Coordinate{Latitude: ro.lat, Longitude: ro.lon},
			})
			if err != nil {
				app.Logger.Error("recommendation failed", zap.Error(err))
				return err
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&ro.lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&ro.lon, "lon", 0, "longitude")
	cmd.Flags().StringVar(&ro.mood, "mood", "", "how you feel, in your own words")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	_ = cmd.MarkFlagRequired("mood")
	return cmd
}

func loadConfig(opts *rootOptions, full bool) (*config.Config, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}
	if full {
		err = cfg.Validate()
	} else {
		err = cfg.Storage.Validate()
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func printResult(w io.Writer, result *pipeline.Result) {
	fmt.Fprintln(w, result.Weather)
	if result.Location != "" {
		fmt.Fprintf(w, "위치: %s\n", result.Location)
	}
	fmt.Fprintln(w)

	if result.Empty() {
		fmt.Fprintln(w, pipeline.NoResultsMessage)
		return
	}
	for i, rec := range result.Recommendations {
		fmt.Fprintf(w, "%d. %s\n", i+1, rec.Title)
		if rec.Reason != "" {
			fmt.Fprintf(w, "   %s\n", rec.Reason)
		}
		if rec.TrackURL != "" {
			fmt.Fprintf(w, "   %s\n", rec.TrackURL)
		}
	}
}
