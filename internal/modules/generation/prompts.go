package generation

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a writer for a card based conversation game. You produce prompts that help people connect through questions, challenges and scenarios. Always answer with a JSON array and nothing else.`

var cardTypeGuidance = map[string]string{
	"question":   "an open ended question one player asks another",
	"challenge":  "a small activity or dare the players do together on the spot",
	"scenario":   "a hypothetical situation the players discuss",
	"connection": "a prompt where players share something about their relationship with each other",
	"wild":       "an unexpected playful prompt that breaks the usual format",
}

var levelGuidance = map[int]string{
	1: "light and easy, suitable for people who just met",
	2: "personal but comfortable, some self disclosure",
	3: "deep and reflective, touching values and feelings",
	4: "intimate and vulnerable, only for players who trust each other",
}

// qualityGuidance translates the numeric quality into writing instructions.
// Thresholds are deliberately coarse: the model responds to register, not to
// decimals.
func qualityGuidance(quality float64) string {
	switch {
	case quality >= 0.8:
		return "Craft each card with exceptional care. Every prompt must be original, emotionally resonant and memorable. Avoid any phrasing that feels generic or templated."
	case quality >= 0.6:
		return "Write thoughtful, well crafted prompts. Each one should feel distinct and spark a genuine exchange."
	case quality >= 0.4:
		return "Write clear, engaging prompts. Keep them varied."
	default:
		return "Write simple, direct prompts."
	}
}

// promptAvoidLimit caps how many earlier texts are echoed back to the model.
const promptAvoidLimit = 20

// typeShare is one card type's slot count within a mixed batch.
type typeShare struct {
	cardType string
	count    int
}

// mixedTypeOrder fixes the weighting and presentation order for mixed runs.
// Questions dominate, wild cards stay rare.
var mixedTypeOrder = []struct {
	cardType string
	weight   int
}{
	{"question", 40},
	{"challenge", 20},
	{"scenario", 20},
	{"connection", 15},
	{"wild", 5},
}

// typeDistribution splits a batch across card types when no single type was
// requested. Tiny batches stay question-heavy; larger ones spread across the
// weighted mix, with rounding leftovers going to questions.
func typeDistribution(count int) []typeShare {
	switch {
	case count <= 2:
		return []typeShare{{"question", count}}
	case count <= 5:
		questions := (count + 1) / 2
		return []typeShare{{"question", questions}, {"challenge", count - questions}}
	}

	shares := make([]typeShare, 0, len(mixedTypeOrder))
	assigned := 0
	for _, w := range mixedTypeOrder {
		n := count * w.weight / 100
		assigned += n
		shares = append(shares, typeShare{cardType: w.cardType, count: n})
	}
	shares[0].count += count - assigned
	return shares
}

// BuildPrompt assembles the user prompt for one batch. An empty cardType asks
// the model for a weighted mix of types instead of a single one. For batches
// after the first, avoid carries texts accepted earlier in the run so the
// model steers away from them.
func BuildPrompt(batchIndex, batchCount int, cardType string, level int, relationshipTypes, languages []string, quality float64, avoid []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d cards for a conversation card game.\n\n", batchCount)
	if cardType != "" {
		fmt.Fprintf(&b, "Card type: %s (%s).\n", cardType, cardTypeGuidance[cardType])
	} else {
		b.WriteString("Card type mix for this batch:\n")
		for _, share := range typeDistribution(batchCount) {
			if share.count == 0 {
				continue
			}
			fmt.Fprintf(&b, "- %d %s cards: %s.\n", share.count, share.cardType, cardTypeGuidance[share.cardType])
		}
	}
	fmt.Fprintf(&b, "Connection level: %d of 4. The tone should be %s.\n", level, levelGuidance[level])
	fmt.Fprintf(&b, "Target relationships: %s.\n", strings.Join(relationshipTypes, ", "))
	fmt.Fprintf(&b, "\n%s\n", qualityGuidance(quality))

	if batchIndex > 0 {
		b.WriteString("\nThis run already produced cards. Do not repeat or paraphrase any of them.\n")
		if len(avoid) > promptAvoidLimit {
			avoid = avoid[len(avoid)-promptAvoidLimit:]
		}
		for _, text := range avoid {
			fmt.Fprintf(&b, "- %s\n", text)
		}
	}

	b.WriteString("\nOutput rules:\n")
	b.WriteString("- Respond with a JSON array only, no prose before or after.\n")
	fmt.Fprintf(&b, "- Each element has a \"content\" object with the card text keyed by language code, for these languages: %s.\n", strings.Join(languages, ", "))
	b.WriteString("- Each card text is one or two sentences.\n")
	b.WriteString("- No two cards may share a theme or phrasing.\n")
	if cardType == "" {
		b.WriteString("- Each element also has a \"type\" field naming its card type.\n")
		b.WriteString("\nExample element: {\"type\": \"question\", \"content\": {\"" + languages[0] + "\": \"...\"}}\n")
	} else {
		b.WriteString("\nExample element: {\"content\": {\"" + languages[0] + "\": \"...\"}}\n")
	}

	return b.String()
}
