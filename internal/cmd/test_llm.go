package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/buildright/internal/llm"
	"github.com/matthieukhl/buildright/internal/prompts"
)

var testLLMCmd = &cobra.Command{
	Use:   "test-llm",
	Short: "Test the LLM provider connection",
	Long: `Test the configured LLM provider with a one-shot completion and a short
streamed chat turn. This helps verify API keys and connectivity before
starting the storefront.`,
	RunE: testLLMProvider,
}

func init() {
	rootCmd.AddCommand(testLLMCmd)
}

func testLLMProvider(cmd *cobra.Command, args []string) error {
	fmt.Println("🧪 Testing LLM provider connection...")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	provider, err := llm.NewProvider(ctx, &cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	fmt.Printf("🤖 Testing completion (%s/%s)...\n", cfg.LLM.Provider, provider.Model())
	response, err := provider.Complete(ctx, prompts.ProductDescription("Cordless Drill", "Tools"), map[string]any{
		"max_tokens": 200,
	})
	if err != nil {
		return fmt.Errorf("failed to generate response: %w", err)
	}
	fmt.Printf("   ✅ Generated response: %s\n", response)

	fmt.Println("💬 Testing chat stream...")
	session, err := provider.NewSession(ctx, prompts.ChatSystemInstruction)
	if err != nil {
		return fmt.Errorf("failed to open chat session: %w", err)
	}
	defer session.Close()

	content, errc := session.Stream(ctx, "Which tool do I need to hang a shelf? Answer in one sentence.")
	var reply strings.Builder
	fragments := 0
	for chunk := range content {
		reply.WriteString(chunk)
		fragments++
	}
	if err := <-errc; err != nil {
		return fmt.Errorf("chat stream failed: %w", err)
	}
	fmt.Printf("   ✅ Streamed %d fragments: %s\n", fragments, reply.String())

	fmt.Println("\n🎉 LLM provider is working correctly!")
	return nil
}
