// Package prompt synthesizes the creative brief sent to the video model.
package prompt

import (
	"fmt"
	"strings"

	"adforge/pkg/model"
	"adforge/pkg/setting"
)

const descriptionLimit = 100

// Synthesize builds the generation prompt for a product. It is a pure
// function: the same snapshot always yields a byte-identical prompt.
func Synthesize(p *model.ProductSnapshot) string {
	cat := setting.Classify(p.Categories, p.Name)
	tpl := setting.For(cat)

	price := fmt.Sprintf("$%d.%02d", p.Price.Units, p.Price.Nanos)
	desc := truncate(p.Description, descriptionLimit)
	elements := renderElements(tpl.Elements)
	establishing := strings.ToLower(firstSentence(tpl.Description))

	return fmt.Sprintf(`You are an expert cinematic ad director.
Use the following metadata as the complete creative brief to generate a premium advertisement.
Do not treat the product image as a static opening frame; stage a cinematic reveal instead.
Follow the timeline as the storyboard, and use the room description, key elements, and environmental details to guide the visual style.
Audio must include continuous, premium-quality background music throughout the ad, seamlessly blending with the specific sound design described in each frame.

Here is the structured metadata to use:

"metadata": {
    "prompt_name": "%[1]s Cinematic Advertisement",
    "base_style": "cinematic, photorealistic, 4K, commercial-grade lighting",
    "aspect_ratio": "16:9"
},
"room_description": "%[2]s",
"camera_setup": "High-end commercial cinematography with smooth motion. Use dolly-ins, pans, and dramatic lighting reveals. Avoid static product stills.",
"key_elements": [
    "Featured product: %[1]s",
    "Dynamic and premium opening (not a freeze-frame)",
    "Professional lighting setup",
    "Clean, modern aesthetic",
    "%[3]s"
],
"product_showcase": [
    "Product highlighted through cinematic lighting reveals",
    "Slow-motion close-ups emphasizing textures and key features",
    "Lifestyle integration showing product in real-world use",
    "Premium angles: overhead, rotating pedestal, and elegant framing",
    "Final hero shot with brand presence and tagline placement"
],
"environmental_elements": %[4]s,
"negative_prompts": [
    "no static freeze-frames",
    "no low quality",
    "no amateur lighting",
    "no cluttered backgrounds",
    "no distracting elements",
    "no poor composition",
    "no oversaturated colors",
    "no human voiceover"
],
"timeline": [
    {
        "sequence": 1,
        "timestamp": "00:00-00:02",
        "action": "Cinematic establishing shot of the %[5]s. Product silhouette or outline revealed gradually through light sweep or camera motion. No still freeze-frame.",
        "audio": "Subtle cinematic build-up layered over engaging background music (luxury, modern, ambient)."
    },
    {
        "sequence": 2,
        "timestamp": "00:02-00:05",
        "action": "Product comes fully into focus with close-up glamour shots. Showcase signature details and textures. Highlight key features: %[6]s...",
        "audio": "Background music continues seamlessly. Smooth audio transition with subtle product accent sounds."
    },
    {
        "sequence": 3,
        "timestamp": "00:05-00:07",
        "action": "Lifestyle demonstration: product naturally in use in a %[7]s. Camera follows motion fluidly, showcasing benefits and premium feel.",
        "audio": "Music maintains rhythm. Ambient lifestyle sounds blend naturally with the score."
    },
    {
        "sequence": 4,
        "timestamp": "00:07-00:08",
        "action": "Final hero shot with elegant framing. Product rotates or sits center-stage with dramatic lighting. Brand or logo subtly integrated.",
        "audio": "Music swells to a confident, premium climax. Concludes on a strong, memorable note."
    }
]

Task: Generate a cinematic, premium-quality advertisement for %[1]s priced at %[8]s.
Focus on luxury presentation, lifestyle integration, and compelling storytelling that makes viewers desire the product.
Always interpret the metadata as the creative brief.
`,
		p.Name,
		tpl.Description,
		tpl.Atmosphere,
		elements,
		establishing,
		desc,
		strings.ToLower(tpl.Atmosphere),
		price,
	)
}

// renderElements renders the environmental elements as a JSON-style list.
func renderElements(elems []string) string {
	quoted := make([]string, len(elems))
	for i, e := range elems {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// firstSentence returns the text before the first period.
func firstSentence(s string) string {
	if i := strings.Index(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
