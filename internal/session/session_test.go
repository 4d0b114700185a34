package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/nvalette/relight/internal/effect"
	"github.com/nvalette/relight/internal/gemini"
	"github.com/nvalette/relight/internal/imagefile"
)

// invokerFunc adapts a function to the Invoker interface.
type invokerFunc func(ctx context.Context, img *imagefile.Image, cfg effect.Config) (*gemini.Result, error)

func (f invokerFunc) Relight(ctx context.Context, img *imagefile.Image, cfg effect.Config) (*gemini.Result, error) {
	return f(ctx, img, cfg)
}

// recordingInvoker records every call and returns a fixed result.
type recordingInvoker struct {
	mu     sync.Mutex
	calls  []effect.Config
	result *gemini.Result
	err    error
}

func (r *recordingInvoker) Relight(ctx context.Context, img *imagefile.Image, cfg effect.Config) (*gemini.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cfg)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func (r *recordingInvoker) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func newTestSession(inv Invoker) *Session {
	return New("test-session", inv)
}

func mustUpload(t *testing.T, s *Session, name string) {
	t.Helper()
	if err := s.Upload(name, "image/png", pngBytes(t)); err != nil {
		t.Fatalf("unexpected upload error: %v", err)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	inv := &recordingInvoker{result: &gemini.Result{Data: []byte("x"), MIMEType: "image/png"}}
	s := newTestSession(inv)
	mustUpload(t, s, "beach.png")

	err := s.Upload("notes.txt", "text/plain", []byte("hello world"))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	st := s.State()
	if !st.HasImage || st.FileName != "beach.png" {
		t.Errorf("rejected upload changed UploadedImage: %+v", st)
	}
	if st.Error == "" {
		t.Error("expected error banner after rejected upload")
	}
}

func TestUploadRejectsImageMIMEWithTextContent(t *testing.T) {
	s := newTestSession(&recordingInvoker{})

	err := s.Upload("fake.png", "image/png", []byte("this is not an image at all, just text"))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if st := s.State(); st.HasImage {
		t.Error("expected no image after rejected upload")
	}
}

func TestUploadClearsPreviousState(t *testing.T) {
	inv := &recordingInvoker{result: &gemini.Result{Data: []byte("out"), MIMEType: "image/png"}}
	s := newTestSession(inv)
	mustUpload(t, s, "one.png")

	if err := s.RequestEffect(context.Background(), effect.Config{Effect: effect.AddSunlight}); err != nil {
		t.Fatalf("unexpected effect error: %v", err)
	}
	if st := s.State(); !st.HasResult || st.LastApplied == nil {
		t.Fatalf("expected result and last-applied before re-upload: %+v", st)
	}

	mustUpload(t, s, "two.png")

	st := s.State()
	if st.HasResult {
		t.Error("expected generated result cleared on new upload")
	}
	if st.LastApplied != nil {
		t.Error("expected last-applied configuration cleared on new upload")
	}
	if st.Error != "" {
		t.Errorf("expected error cleared on new upload, got %q", st.Error)
	}
	if st.FileName != "two.png" {
		t.Errorf("expected new image name two.png, got %q", st.FileName)
	}
}

func TestRequestEffectWithoutImage(t *testing.T) {
	inv := &recordingInvoker{}
	s := newTestSession(inv)

	err := s.RequestEffect(context.Background(), effect.Config{Effect: effect.AddSunlight})
	var pErr *PreconditionError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if inv.callCount() != 0 {
		t.Errorf("expected no remote call, got %d", inv.callCount())
	}
}

func TestRequestEffectRejectsUnknownEffect(t *testing.T) {
	inv := &recordingInvoker{}
	s := newTestSession(inv)
	mustUpload(t, s, "a.png")

	err := s.RequestEffect(context.Background(), effect.Config{Effect: "sparkle"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if inv.callCount() != 0 {
		t.Errorf("expected no remote call, got %d", inv.callCount())
	}
}

func TestSuccessfulEffectStoresLastApplied(t *testing.T) {
	inv := &recordingInvoker{result: &gemini.Result{Data: []byte("out"), MIMEType: "image/png", Text: "done"}}
	s := newTestSession(inv)
	mustUpload(t, s, "a.png")

	cfg := effect.Config{Effect: effect.AddSunlight, Intensity: 2, Direction: effect.DirectionTop}
	if err := s.RequestEffect(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := s.State()
	if st.Loading || st.ActiveProcess != ProcessNone {
		t.Errorf("expected idle state after completion: %+v", st)
	}
	if st.LastApplied == nil || *st.LastApplied != cfg {
		t.Errorf("expected last-applied %+v, got %+v", cfg, st.LastApplied)
	}
	if !st.HasResult || st.ResultNote != "done" {
		t.Errorf("expected stored result, got %+v", st)
	}
}

func TestRemoveEffectIgnoresIntensityAndDirection(t *testing.T) {
	inv := &recordingInvoker{result: &gemini.Result{Data: []byte("out"), MIMEType: "image/png"}}
	s := newTestSession(inv)
	mustUpload(t, s, "a.png")

	err := s.RequestEffect(context.Background(), effect.Config{
		Effect: effect.RemoveShadows, Intensity: 3, Direction: effect.DirectionLeft,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := effect.Config{Effect: effect.RemoveShadows}
	if st := s.State(); st.LastApplied == nil || *st.LastApplied != want {
		t.Errorf("expected normalized last-applied %+v, got %+v", want, st.LastApplied)
	}
}

func TestVariationBeforeAnyEffectIsNoOp(t *testing.T) {
	inv := &recordingInvoker{}
	s := newTestSession(inv)
	mustUpload(t, s, "a.png")

	before := s.State()
	if err := s.RequestVariation(context.Background()); err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}
	if inv.callCount() != 0 {
		t.Errorf("expected no remote call, got %d", inv.callCount())
	}
	if after := s.State(); after != before {
		t.Errorf("expected state unchanged, before %+v after %+v", before, after)
	}
}

func TestVariationReplaysLastAppliedUnchanged(t *testing.T) {
	inv := &recordingInvoker{result: &gemini.Result{Data: []byte("out"), MIMEType: "image/png"}}
	s := newTestSession(inv)
	mustUpload(t, s, "a.png")

	cfg := effect.Config{Effect: effect.AddSunlight, Intensity: 2, Direction: effect.DirectionTop}
	if err := s.RequestEffect(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.RequestVariation(context.Background()); err != nil {
		t.Fatalf("unexpected variation error: %v", err)
	}

	inv.mu.Lock()
	calls := append([]effect.Config(nil), inv.calls...)
	inv.mu.Unlock()
	if len(calls) != 2 {
		t.Fatalf("expected 2 remote calls, got %d", len(calls))
	}
	if calls[1] != cfg {
		t.Errorf("expected variation call with %+v, got %+v", cfg, calls[1])
	}
	if st := s.State(); st.LastApplied == nil || *st.LastApplied != cfg {
		t.Errorf("expected last-applied unchanged by variation, got %+v", st.LastApplied)
	}
}

func TestFailedEffectSetsErrorAndClearsLoading(t *testing.T) {
	inv := &recordingInvoker{err: errors.New("API returned status 500: internal")}
	s := newTestSession(inv)
	mustUpload(t, s, "a.png")

	err := s.RequestEffect(context.Background(), effect.Config{Effect: effect.AddShadows})
	if err == nil {
		t.Fatal("expected error from failed effect")
	}

	st := s.State()
	if st.Loading || st.ActiveProcess != ProcessNone {
		t.Errorf("expected loading cleared after failure: %+v", st)
	}
	if st.Error == "" {
		t.Error("expected error banner after failure")
	}
	if st.HasResult {
		t.Error("expected no result after failure")
	}
	if st.LastApplied != nil {
		t.Error("expected no last-applied after failure")
	}
}

func TestSupersededRequestIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	resultB := &gemini.Result{Data: []byte("b"), MIMEType: "image/png", Text: "B"}

	inv := invokerFunc(func(ctx context.Context, img *imagefile.Image, cfg effect.Config) (*gemini.Result, error) {
		if cfg.Effect == effect.AddSunlight {
			close(started)
			<-ctx.Done() // superseding request cancels this call
			return nil, ctx.Err()
		}
		return resultB, nil
	})

	s := newTestSession(inv)
	mustUpload(t, s, "a.png")

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- s.RequestEffect(context.Background(), effect.Config{Effect: effect.AddSunlight, Intensity: 1, Direction: effect.DirectionTop})
	}()
	<-started

	cfgB := effect.Config{Effect: effect.RemoveShadows}
	if err := s.RequestEffect(context.Background(), cfgB); err != nil {
		t.Fatalf("unexpected error from superseding request: %v", err)
	}

	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded from first request, got %v", err)
	}

	st := s.State()
	if !st.HasResult || st.ResultNote != "B" {
		t.Errorf("expected result from the newest request, got %+v", st)
	}
	if st.LastApplied == nil || *st.LastApplied != cfgB {
		t.Errorf("expected last-applied from newest request, got %+v", st.LastApplied)
	}
	if st.Error != "" {
		t.Errorf("expected no error banner from discarded request, got %q", st.Error)
	}
}

func TestDownloadWithoutResult(t *testing.T) {
	s := newTestSession(&recordingInvoker{})
	if _, _, _, err := s.Download(); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestDownloadName(t *testing.T) {
	inv := &recordingInvoker{result: &gemini.Result{Data: []byte("out"), MIMEType: "image/png"}}
	s := newTestSession(inv)
	mustUpload(t, s, "beach-day.png")

	if err := s.RequestEffect(context.Background(), effect.Config{Effect: effect.AddSunlight}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name, mime, data, err := s.Download()
	if err != nil {
		t.Fatalf("unexpected download error: %v", err)
	}
	if name != "beach-day-add-sunlight.png" {
		t.Errorf("expected filename beach-day-add-sunlight.png, got %q", name)
	}
	if mime != "image/png" {
		t.Errorf("expected mime image/png, got %q", mime)
	}
	if !bytes.Equal(data, []byte("out")) {
		t.Errorf("unexpected download payload %q", data)
	}
}
