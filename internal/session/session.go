// Package session implements the state controller for one editing session:
// the uploaded photo, the generated result, the in-flight operation tag, and
// the configuration snapshot used for variations.
//
// All state transitions go through the operations below, so the controller is
// testable without any HTTP or rendering layer. Each accepted request
// captures a sequence token; a completion only writes state while its token
// is still current, which makes overlapping requests deterministic: the
// newest accepted request wins, and superseded remote calls are cancelled
// and their late responses discarded.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nvalette/relight/internal/effect"
	"github.com/nvalette/relight/internal/gemini"
	"github.com/nvalette/relight/internal/imagefile"
)

// Invoker is the remote effect invoker contract the controller consumes.
// It is treated as opaque: one call, one image or one failure.
type Invoker interface {
	Relight(ctx context.Context, img *imagefile.Image, cfg effect.Config) (*gemini.Result, error)
}

// Process tags which operation is in flight.
type Process string

const (
	// ProcessNone means the session is idle.
	ProcessNone Process = ""
	// ProcessVariation marks a replay of the last applied configuration.
	ProcessVariation Process = "variation"
)

// GeneratedImage is one result produced by the invoker, annotated with the
// effect that produced it.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
	Effect   effect.Effect
	Note     string
}

// Session owns all state for one user session.
type Session struct {
	id      string
	invoker Invoker

	mu          sync.Mutex
	image       *imagefile.Image
	result      *GeneratedImage
	lastApplied *effect.Config
	active      Process
	loading     bool
	errMsg      string

	seq    uint64             // token of the most recently accepted request
	cancel context.CancelFunc // cancels the superseded in-flight remote call
}

// New creates an idle session.
func New(id string, invoker Invoker) *Session {
	return &Session{id: id, invoker: invoker}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Upload validates and stores a new photo. On success the previous result,
// last-applied configuration, and error banner are cleared and any in-flight
// request is superseded. On failure the previous state is untouched except
// for the error banner, and a *ValidationError is returned.
func (s *Session) Upload(fileName, declaredMIME string, data []byte) error {
	img, err := imagefile.New(fileName, declaredMIME, data)
	if err != nil {
		s.mu.Lock()
		s.errMsg = err.Error()
		s.mu.Unlock()
		log.Warn().Err(err).Str("session", s.id).Str("file", fileName).Msg("Upload rejected")
		return &ValidationError{Reason: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
	s.image = img
	s.result = nil
	s.lastApplied = nil
	s.errMsg = ""
	s.loading = false
	s.active = ProcessNone

	log.Info().Str("session", s.id).Str("file", img.FileName).Msg("Image uploaded")
	return nil
}

// RequestEffect applies a lighting effect to the uploaded photo. It blocks
// until the remote call resolves, is cancelled, or is superseded by a newer
// request on the same session.
func (s *Session) RequestEffect(ctx context.Context, cfg effect.Config) error {
	cfg, err := cfg.Normalize()
	if err != nil {
		s.mu.Lock()
		s.errMsg = err.Error()
		s.mu.Unlock()
		return &ValidationError{Reason: err.Error()}
	}
	return s.run(ctx, cfg, Process(cfg.Effect))
}

// RequestVariation replays the most recently applied configuration. It is a
// no-op when no configuration has been applied yet: no state change, no
// remote call.
func (s *Session) RequestVariation(ctx context.Context) error {
	s.mu.Lock()
	if s.lastApplied == nil {
		s.mu.Unlock()
		log.Debug().Str("session", s.id).Msg("Variation requested before any applied effect, ignoring")
		return nil
	}
	cfg := *s.lastApplied
	s.mu.Unlock()

	return s.run(ctx, cfg, ProcessVariation)
}

// run executes one effect request under a fresh sequence token. The remote
// call happens outside the lock; the completion is applied only if the token
// is still current.
func (s *Session) run(ctx context.Context, cfg effect.Config, proc Process) error {
	s.mu.Lock()
	if s.image == nil {
		s.errMsg = "Upload an image first."
		s.mu.Unlock()
		return &PreconditionError{Reason: "no image uploaded"}
	}

	s.supersedeLocked()
	s.seq++
	token := s.seq

	callCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.loading = true
	s.active = proc
	s.errMsg = ""
	s.result = nil
	img := s.image
	s.mu.Unlock()

	log.Info().
		Str("session", s.id).
		Str("process", string(proc)).
		Str("effect", string(cfg.Effect)).
		Int("intensity", cfg.Intensity).
		Str("direction", string(cfg.Direction)).
		Msg("Requesting effect")

	res, err := s.invoker.Relight(callCtx, img, cfg)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.seq {
		log.Info().
			Str("session", s.id).
			Str("process", string(proc)).
			Uint64("token", token).
			Uint64("current", s.seq).
			Msg("Discarding completion of superseded request")
		return ErrSuperseded
	}

	s.loading = false
	s.active = ProcessNone
	s.cancel = nil

	if err != nil {
		s.errMsg = remoteErrorMessage(err)
		log.Error().Err(err).Str("session", s.id).Str("effect", string(cfg.Effect)).Msg("Effect request failed")
		return err
	}

	s.result = &GeneratedImage{
		Data:     res.Data,
		MIMEType: res.MIMEType,
		Effect:   cfg.Effect,
		Note:     res.Text,
	}
	if proc != ProcessVariation {
		snapshot := cfg
		s.lastApplied = &snapshot
	}

	log.Info().
		Str("session", s.id).
		Str("effect", string(cfg.Effect)).
		Int("result_bytes", len(res.Data)).
		Msg("Effect applied")
	return nil
}

// Download returns the generated image and the filename to save it under:
// the original stem plus the applied effect name. ErrNoResult when nothing
// has been generated.
func (s *Session) Download() (fileName, mimeType string, data []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return "", "", nil, ErrNoResult
	}

	stem := "image"
	if s.image != nil {
		stem = s.image.Stem()
	}
	name := fmt.Sprintf("%s-%s.png", stem, s.result.Effect.Slug())

	return name, s.result.MIMEType, s.result.Data, nil
}

// supersedeLocked invalidates any in-flight request and cancels its remote
// call. Caller holds s.mu.
func (s *Session) supersedeLocked() {
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// remoteErrorMessage turns an invoker failure into the banner text.
func remoteErrorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return genericRemoteError
	}
	return err.Error()
}
