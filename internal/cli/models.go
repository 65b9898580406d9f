package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewModelsCommand creates the models command.
func NewModelsCommand(global *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Show Ollama availability and installed models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(global, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			client := rt.ollamaClient()
			available := client.IsAvailable(cmd.Context())
			models := client.ListModels(cmd.Context())

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"url":              rt.cfg.OllamaBaseURL,
					"model":            client.Model(),
					"ollama_available": available,
					"models":           models,
				})
			}

			if !available {
				fmt.Fprintf(out, "Ollama not reachable at %s\n", rt.cfg.OllamaBaseURL)
				return nil
			}
			fmt.Fprintf(out, "Ollama reachable at %s (configured model: %s)\n", rt.cfg.OllamaBaseURL, client.Model())
			if len(models) == 0 {
				fmt.Fprintln(out, "No models installed")
				return nil
			}
			for _, m := range models {
				fmt.Fprintf(out, "  %s\n", m)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
