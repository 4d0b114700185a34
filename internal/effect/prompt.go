package effect

// prompt.go renders an effect configuration into the natural-language
// instruction sent to the image model. The model receives the photo inline
// plus this instruction; it returns the edited photo.

import (
	"fmt"
	"strings"
	"time"
)

// SystemInstruction frames every lighting edit. The model must only relight
// the scene, never recompose it.
const SystemInstruction = `You are a professional photo retoucher specializing in natural light.
You receive one photograph and one relighting instruction.

Rules:
- Change only the lighting of the scene. Never add, remove, move, or redraw
  objects, people, or backgrounds.
- Keep the composition, framing, and resolution of the original photo.
- The result must look like the same photo taken under different light, not
  like a different photo.
- Return the edited photograph as an image.`

var effectInstructions = map[Effect]string{
	AddSunlight:           "Add warm, natural sunlight to this photo, with realistic highlights and a gentle golden tone.",
	AddShadows:            "Add soft, natural shadows to this photo, as if cast by real objects in the scene.",
	AddSunlightShadows:    "Add warm, natural sunlight together with the soft shadows it would realistically cast in this scene.",
	RemoveSunlight:        "Remove the harsh sunlight from this photo, evening out the exposure into soft, diffuse daylight.",
	RemoveShadows:         "Remove the shadows from this photo, lifting the dark areas into even, natural illumination.",
	RemoveSunlightShadows: "Remove both the harsh sunlight and the shadows from this photo, producing flat, even, overcast-style lighting.",
}

var intensityPhrases = map[int]string{
	1: "Apply the change subtly; it should be barely noticeable.",
	2: "Apply the change at a moderate, clearly visible strength.",
	3: "Apply the change strongly and dramatically.",
}

var directionPhrases = map[Direction]string{
	DirectionTop:    "The light comes from above.",
	DirectionLeft:   "The light comes from the left side.",
	DirectionCenter: "The light comes from directly in front of the scene.",
	DirectionRight:  "The light comes from the right side.",
	DirectionBottom: "The light comes from below.",
}

// Instruction renders the full user instruction for a normalized config.
// captureTime, when non-zero, adds a hint about the original shooting hour so
// the model can match plausible sun positions; pass the zero time to omit it.
func Instruction(cfg Config, captureTime time.Time) string {
	var b strings.Builder
	b.WriteString(effectInstructions[cfg.Effect])

	if cfg.Effect.IsAdditive() {
		b.WriteString(" ")
		b.WriteString(intensityPhrases[cfg.Intensity])
		b.WriteString(" ")
		b.WriteString(directionPhrases[cfg.Direction])
	}

	if hint := captureHint(captureTime); hint != "" {
		b.WriteString(" ")
		b.WriteString(hint)
	}

	return b.String()
}

// captureHint maps the original capture hour to a time-of-day phrase.
func captureHint(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	var daytime string
	switch h := t.Hour(); {
	case h < 6:
		daytime = "at night"
	case h < 11:
		daytime = "in the morning"
	case h < 15:
		daytime = "around midday"
	case h < 19:
		daytime = "in the late afternoon"
	default:
		daytime = "in the evening"
	}
	return fmt.Sprintf("For context, the photo was originally taken %s.", daytime)
}
