package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"github.com/harvx/rewrite/internal/planconfig"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema for a plan document",
	Long:  "Print the JSON Schema that rwx apply --plan and the apply_plan MCP tool both validate plan documents against.",
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	s, err := jsonschema.For[planconfig.Document](nil)
	if err != nil {
		return fmt.Errorf("building document schema: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
