package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/broker-finder/internal/forward"
	"github.com/sells-group/broker-finder/internal/pipeline"
)

var (
	searchLocation string
	searchRadius   int
	searchForward  bool
	searchFormat   string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find and enrich brokers around a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchLocation == "" {
			return eris.New("--location is required")
		}
		radius := searchRadius
		if radius == 0 {
			radius = cfg.Search.DefaultRadiusKm
		}
		if radius < 1 || radius > cfg.Search.MaxRadiusKm {
			return eris.Errorf("radius must be between 1 and %d km", cfg.Search.MaxRadiusKm)
		}

		env, err := initPipeline()
		if err != nil {
			return err
		}

		result, err := env.Pipeline.Run(cmd.Context(), searchLocation, radius)
		if eris.Is(err, pipeline.ErrLocationNotFound) {
			return eris.Errorf("location %q could not be resolved", searchLocation)
		}
		if err != nil {
			return err
		}
		env.Cache.Put(result)

		if searchJSON {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		printResult(result)

		if searchForward {
			formatName := searchFormat
			if formatName == "" {
				formatName = env.Settings.Forward().Format
			}
			format := forward.ParseFormat(formatName)
			payloads := make([]map[string]any, len(result.Brokers))
			for i, b := range result.Brokers {
				payloads[i] = forward.BuildPayload(b, format)
			}
			summary := env.Forwarder.SendBatch(cmd.Context(), payloads)
			fmt.Printf("\nForwarded: %d ok, %d failed (of %d)\n", summary.Successful, summary.Failed, summary.Total)
			for _, e := range summary.Errors {
				fmt.Printf("  %s\n", e)
			}
			if summary.Failed > 0 {
				return eris.Errorf("%d of %d deliveries failed", summary.Failed, summary.Total)
			}
		}
		return nil
	},
}

func printResult(result *pipeline.Result) {
	fmt.Printf("Found %d brokers near %q (radius %d km), enriched %d:\n\n",
		result.TotalFound, result.Location, result.RadiusKm, len(result.Brokers))
	for i, b := range result.Brokers {
		fmt.Printf("%2d. %s\n", i+1, b.Name)
		fmt.Printf("    Address: %s\n", b.Address)
		fmt.Printf("    Phone:   %s\n", b.Phone)
		fmt.Printf("    Email:   %s\n", b.Email)
		fmt.Printf("    Website: %s\n", b.Website)
		fmt.Printf("    Contact: %s\n", b.ContactPerson)
		if b.Rating > 0 {
			fmt.Printf("    Rating:  %.1f (%d reviews)\n", b.Rating, b.RatingCount)
		}
		score := forward.QualityScore(b)
		fmt.Printf("    Quality: %s (%.2f)\n", forward.QualityTier(score), score)
	}
	zap.L().Info("search complete",
		zap.String("location", result.Location),
		zap.Int("found", result.TotalFound),
		zap.Int("enriched", len(result.Brokers)),
	)
}

func init() {
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "city, address, postal code, or \"lat, lng\"")
	searchCmd.Flags().IntVar(&searchRadius, "radius", 0, "search radius in km (default from config)")
	searchCmd.Flags().BoolVar(&searchForward, "forward", false, "forward results to the configured webhook")
	searchCmd.Flags().StringVar(&searchFormat, "format", "", "payload format: basic, enhanced, custom")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the raw result as JSON")
	rootCmd.AddCommand(searchCmd)
}
