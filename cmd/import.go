package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/broker-finder/internal/dedupe"
	"github.com/sells-group/broker-finder/internal/importer"
	"github.com/sells-group/broker-finder/internal/pipeline"
)

var (
	importFile     string
	importLocation string
	importRadius   int
	importJSON     bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Compare an existing broker list against a fresh search",
	Long:  "Parses an XLSX customer list, searches the area, and splits the discovered brokers into known duplicates and new leads.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importFile == "" || importLocation == "" {
			return eris.New("--file and --location are required")
		}

		records, err := importer.ParseXLSX(importFile)
		if err != nil {
			return err
		}
		zap.L().Info("import: parsed broker list",
			zap.String("file", importFile),
			zap.Int("records", len(records)),
		)

		radius := importRadius
		if radius == 0 {
			radius = cfg.Search.DefaultRadiusKm
		}

		env, err := initPipeline()
		if err != nil {
			return err
		}

		result, err := env.Pipeline.Run(cmd.Context(), importLocation, radius)
		if eris.Is(err, pipeline.ErrLocationNotFound) {
			return eris.Errorf("location %q could not be resolved", importLocation)
		}
		if err != nil {
			return err
		}

		duplicates, fresh := dedupe.Partition(result.Brokers, records)

		if importJSON {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"imported":   len(records),
				"discovered": len(result.Brokers),
				"duplicates": duplicates,
				"new":        fresh,
			})
		}

		fmt.Printf("Imported %d existing brokers, discovered %d.\n", len(records), len(result.Brokers))
		fmt.Printf("Already known: %d\n", len(duplicates))
		for _, b := range duplicates {
			fmt.Printf("  = %s (%s)\n", b.Name, b.Address)
		}
		fmt.Printf("New leads: %d\n", len(fresh))
		for _, b := range fresh {
			fmt.Printf("  + %s (%s)\n", b.Name, b.Address)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to the XLSX broker list")
	importCmd.Flags().StringVar(&importLocation, "location", "", "search location to compare against")
	importCmd.Flags().IntVar(&importRadius, "radius", 0, "search radius in km (default from config)")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "print the comparison as JSON")
	rootCmd.AddCommand(importCmd)
}
