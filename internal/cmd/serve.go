package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the BuildRight storefront server",
	Long: `Start the BuildRight storefront server which provides:
- REST API for the catalog, cart and admin area
- Server-Sent Events chat with the BuildBuddy assistant
- AI-generated product descriptions for new inventory`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 BuildRight Starting...")

	fmt.Println("📝 Loading configuration...")
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🤖 Connecting to %s...\n", cfg.LLM.Provider)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Printf("📦 Catalog loaded: %d products\n", a.catalog.Len())

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	fmt.Println("⚙️  Setting up server...")
	srv := a.server()

	fmt.Printf("🌐 Starting server on %s...\n", cfg.Server.Addr)
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server failed: %w", err)
	}

	fmt.Println("👋 Server stopped")
	return nil
}
