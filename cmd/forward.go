package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/broker-finder/internal/forward"
	"github.com/sells-group/broker-finder/internal/model"
)

var (
	forwardPayloadFile string
	forwardTestFormat  string
)

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Send a test payload to the configured webhook",
	Long:  "Delivers either a JSON payload file or a built-in sample broker to the webhook, and reports the categorized outcome.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline()
		if err != nil {
			return err
		}

		var payload any
		if forwardPayloadFile != "" {
			data, err := os.ReadFile(forwardPayloadFile)
			if err != nil {
				return eris.Wrap(err, "read payload file")
			}
			if err := json.Unmarshal(data, &payload); err != nil {
				return eris.Wrap(err, "payload file is not valid JSON")
			}
		} else {
			payload = forward.BuildPayload(sampleBroker(), forward.ParseFormat(forwardTestFormat))
		}

		result := env.Forwarder.Send(cmd.Context(), payload)
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))

		if !result.Success {
			return eris.Errorf("delivery failed: %s", result.Error)
		}
		return nil
	},
}

// sampleBroker is the record sent by the connectivity test.
func sampleBroker() model.EnrichedBroker {
	return model.EnrichedBroker{
		Name:           "Testmakler GmbH",
		Address:        "Musterstr. 1, 10115 Berlin",
		Phone:          "030 0000000",
		Email:          "test@testmakler.de",
		Website:        "https://testmakler.de",
		ContactPerson:  "Max Mustermann",
		Rating:         5.0,
		RatingCount:    1,
		PlaceID:        "test-place-id",
		BusinessStatus: "OPERATIONAL",
		SearchLocation: "Berlin",
		SearchRadiusKm: 1,
		DiscoveredAt:   time.Now().UTC(),
	}
}

func init() {
	forwardCmd.Flags().StringVar(&forwardPayloadFile, "payload", "", "JSON file to send instead of the sample broker")
	forwardCmd.Flags().StringVar(&forwardTestFormat, "format", "", "payload format for the sample broker")
	rootCmd.AddCommand(forwardCmd)
}
