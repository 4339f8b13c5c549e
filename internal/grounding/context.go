// Package grounding renders the coffee catalog into the text block that is
// injected ahead of chat completions, and trims it to a token budget.
package grounding

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/bean-scene/internal/model"
)

const (
	// BlockSeparator delimits the preamble and each product block.
	BlockSeparator = "\n---\n"

	// TruncationNotice is appended when unstructured text has to be cut.
	TruncationNotice = "\n[context truncated]"

	charsPerToken = 4
	tokenBuffer   = 100
)

// Preamble constrains the model to the supplied products.
const Preamble = `You are a coffee assistant for a specialty roaster.
Answer using only the products listed below. If a question cannot be answered
from these products, say so. Never invent products, prices, origins, or links.`

// BuildContext renders the preamble followed by one block per product.
func BuildContext(products []model.Coffee) string {
	blocks := make([]string, 0, len(products)+1)
	blocks = append(blocks, Preamble)
	for _, p := range products {
		blocks = append(blocks, renderProduct(p))
	}
	return strings.Join(blocks, BlockSeparator)
}

func renderProduct(p model.Coffee) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n", singleLine(p.Name))
	if desc := singleLine(p.Description); desc != "" {
		fmt.Fprintf(&b, "Description: %s\n", desc)
	}
	if origin := singleLine(p.Origin); origin != "" {
		fmt.Fprintf(&b, "Origin: %s\n", origin)
	}
	fmt.Fprintf(&b, "Roast level: %s (%d/%d)\n", p.Roast, int(p.Roast), int(model.MaxRoast))
	if len(p.Notes) > 0 {
		fmt.Fprintf(&b, "Flavor notes: %s\n", singleLine(strings.Join(p.NoteNames(), ", ")))
	}
	fmt.Fprintf(&b, "URL: %s", singleLine(p.URL))
	return b.String()
}

// singleLine collapses all whitespace runs to one space so field text can
// never reproduce BlockSeparator inside a product block.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// OptimizeContext fits text into roughly maxTokens tokens, at four characters
// per token less a fixed buffer. Block-structured text loses whole product
// blocks from the end; the preamble is always kept. Anything else is cut and
// marked with TruncationNotice. The result is never longer than text.
func OptimizeContext(text string, maxTokens int) string {
	budget := max((maxTokens-tokenBuffer)*charsPerToken, 0)
	if len(text) <= budget {
		return text
	}

	blocks := strings.Split(text, BlockSeparator)
	if len(blocks) > 1 && len(blocks[0]) <= budget {
		size := len(blocks[0])
		keep := 1
		for _, block := range blocks[1:] {
			next := size + len(BlockSeparator) + len(block)
			if next > budget {
				break
			}
			size = next
			keep++
		}
		return strings.Join(blocks[:keep], BlockSeparator)
	}

	return hardTruncate(text, budget)
}

func hardTruncate(text string, budget int) string {
	out := truncateUTF8(text, max(budget-len(TruncationNotice), 0)) + TruncationNotice
	if len(out) > len(text) {
		return truncateUTF8(text, budget)
	}
	return out
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
