package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/buildright/internal/models"
)

var (
	describeName     string
	describeCategory string
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Generate a product description",
	Long: `Generate a short marketing description for a product, the same way the
admin area does when adding inventory.`,
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().StringVar(&describeName, "name", "", "product name")
	describeCmd.Flags().StringVar(&describeCategory, "category", string(models.CategoryTools), "product category")
	_ = describeCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	if _, err := models.ParseCategory(describeCategory); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✍️  Generating description with %s...\n", a.provider.Model())
	fmt.Fprintln(out, a.describer.Describe(cmd.Context(), describeName, describeCategory))
	return nil
}
