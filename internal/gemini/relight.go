package gemini

import (
	"context"

	"github.com/nvalette/relight/internal/effect"
	"github.com/nvalette/relight/internal/imagefile"
)

// Relight renders the instruction for cfg and applies it to the photo. This
// is the operation the session controller invokes; cfg must already be
// normalized.
func (c *Client) Relight(ctx context.Context, img *imagefile.Image, cfg effect.Config) (*Result, error) {
	instruction := effect.Instruction(cfg, img.CaptureTime)
	return c.ApplyEffect(ctx, img.Data, img.MIMEType, instruction, effect.SystemInstruction)
}
