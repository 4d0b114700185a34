package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nvalette/relight/internal/config"
	"github.com/nvalette/relight/internal/effect"
	"github.com/nvalette/relight/internal/imagefile"
	"github.com/nvalette/relight/internal/session"
)

type app struct {
	cfg      *config.Config
	sessions *session.Store
}

// routes registers the JSON API. The frontend file server is attached
// separately in main, so tests can drive the API without the embedded assets.
func (a *app) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/effects", a.handleEffects)
	mux.HandleFunc("POST /api/session", a.handleCreateSession)
	mux.HandleFunc("GET /api/session/{id}", a.handleState)
	mux.HandleFunc("POST /api/session/{id}/upload", a.handleUpload)
	mux.HandleFunc("POST /api/session/{id}/effect", a.handleEffect)
	mux.HandleFunc("POST /api/session/{id}/variation", a.handleVariation)
	mux.HandleFunc("GET /api/session/{id}/image", a.handleImage)
	mux.HandleFunc("GET /api/session/{id}/download", a.handleDownload)
	return mux
}

// getSession resolves the {id} path segment to a live session.
func (a *app) getSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.PathValue("id")
	sess, ok := a.sessions.Get(id)
	if !ok {
		httpError(w, http.StatusNotFound, "session not found or expired")
		return nil, false
	}
	return sess, true
}

// GET /api/effects
func (a *app) handleEffects(w http.ResponseWriter, r *http.Request) {
	type effectInfo struct {
		Effect   effect.Effect `json:"effect"`
		Additive bool          `json:"additive"`
	}
	effects := make([]effectInfo, 0, len(effect.All))
	for _, e := range effect.All {
		effects = append(effects, effectInfo{Effect: e, Additive: e.IsAdditive()})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"effects":      effects,
		"directions":   effect.Directions,
		"minIntensity": effect.MinIntensity,
		"maxIntensity": effect.MaxIntensity,
	})
}

// POST /api/session
func (a *app) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := a.sessions.Create()
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    sess.ID(),
		"state": sess.State(),
	})
}

// GET /api/session/{id}
func (a *app) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.getSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sess.State())
}

// POST /api/session/{id}/upload (multipart, field "file")
func (a *app) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.getSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.cfg.MaxUploadBytes); err != nil {
		httpError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload too large (limit %d bytes)", a.cfg.MaxUploadBytes))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	declared := header.Header.Get("Content-Type")
	if declared == "" || declared == "application/octet-stream" {
		if m, ok := imagefile.SupportedExtensions[strings.ToLower(filepath.Ext(header.Filename))]; ok {
			declared = m
		}
	}

	if err := sess.Upload(header.Filename, declared, data); err != nil {
		var vErr *session.ValidationError
		if errors.As(err, &vErr) {
			httpError(w, http.StatusBadRequest, vErr.Reason)
			return
		}
		httpError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	respondJSON(w, http.StatusOK, sess.State())
}

type effectRequest struct {
	Effect    effect.Effect    `json:"effect"`
	Intensity int              `json:"intensity"`
	Direction effect.Direction `json:"direction"`
}

// POST /api/session/{id}/effect
func (a *app) handleEffect(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.getSession(w, r)
	if !ok {
		return
	}

	var req effectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := sess.RequestEffect(r.Context(), effect.Config{
		Effect:    req.Effect,
		Intensity: req.Intensity,
		Direction: req.Direction,
	})
	a.respondEffectOutcome(w, sess, err)
}

// POST /api/session/{id}/variation
func (a *app) handleVariation(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.getSession(w, r)
	if !ok {
		return
	}
	err := sess.RequestVariation(r.Context())
	a.respondEffectOutcome(w, sess, err)
}

// respondEffectOutcome maps controller errors to HTTP statuses. The session
// state already carries the user-facing error banner, so remote failures
// still return the state body.
func (a *app) respondEffectOutcome(w http.ResponseWriter, sess *session.Session, err error) {
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, sess.State())
	case errors.Is(err, session.ErrSuperseded):
		httpError(w, http.StatusConflict, "request superseded by a newer one")
	default:
		var vErr *session.ValidationError
		var pErr *session.PreconditionError
		switch {
		case errors.As(err, &vErr):
			httpError(w, http.StatusBadRequest, vErr.Reason)
		case errors.As(err, &pErr):
			httpError(w, http.StatusConflict, pErr.Reason)
		default:
			respondJSON(w, http.StatusBadGateway, sess.State())
		}
	}
}

// GET /api/session/{id}/image?which=original|result[&thumb=1]
func (a *app) handleImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.getSession(w, r)
	if !ok {
		return
	}

	var data []byte
	var mime string
	switch r.URL.Query().Get("which") {
	case "result":
		res, ok := sess.Result()
		if !ok {
			httpError(w, http.StatusNotFound, "no generated image")
			return
		}
		data, mime = res.Data, res.MIMEType
	default:
		img, ok := sess.Original()
		if !ok {
			httpError(w, http.StatusNotFound, "no uploaded image")
			return
		}
		data, mime = img.Data, img.MIMEType
	}

	if r.URL.Query().Get("thumb") == "1" {
		thumbData, thumbMIME, err := imagefile.Thumbnail(data, imagefile.DefaultThumbnailMaxDimension)
		if err != nil {
			log.Warn().Err(err).Str("session", sess.ID()).Msg("Failed to generate thumbnail")
			httpError(w, http.StatusInternalServerError, "thumbnail generation failed")
			return
		}
		data, mime = thumbData, thumbMIME
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// GET /api/session/{id}/download
func (a *app) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.getSession(w, r)
	if !ok {
		return
	}

	name, mime, data, err := sess.Download()
	if err != nil {
		httpError(w, http.StatusNotFound, "no generated image to download")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}
