package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/buildright/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "buildright",
	Short: "BuildRight Hardware - storefront with an AI shopping assistant",
	Long: `BuildRight is a hardware storefront: a product catalog with search,
a shopping cart, an admin area for adding products and the BuildBuddy
chat assistant.

Run it as an HTTP server, or use the CLI commands to browse products,
generate descriptions and chat from the terminal.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default searches ./deploy, ., $HOME/.buildright, /etc/buildright)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.LoadConfig()
}
