package prompts

import (
	"fmt"
	"strings"
)

// ChatSystemInstruction sets up the store assistant persona
const ChatSystemInstruction = `You are "BuildBuddy", an expert AI assistant for BuildRight Hardware store.
Your goal is to help customers find the right tools and materials for their DIY projects.

Guidelines:
1. Be concise, practical, and safety-conscious.
2. If a user asks how to fix something, give a brief step-by-step and suggest the tools needed.
3. Recommend types of products (e.g., "You'll need a phillips screwdriver and wood filler") rather than specific links unless you are sure.
4. Maintain a friendly, "handy-person" persona.`

// DescriptionWordLimit bounds generated product copy
const DescriptionWordLimit = 50

// ProductDescription builds the one-shot copywriting prompt
func ProductDescription(name, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a compelling, professional e-commerce product description for a %q in the category %q.\n", name, category)
	fmt.Fprintf(&b, "Keep it under %d words. Focus on durability and utility.", DescriptionWordLimit)
	return b.String()
}
