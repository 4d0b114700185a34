package session

import (
	"github.com/nvalette/relight/internal/effect"
	"github.com/nvalette/relight/internal/imagefile"
)

// State is a read-only snapshot of the session for the frontend.
type State struct {
	HasImage      bool           `json:"hasImage"`
	FileName      string         `json:"fileName,omitempty"`
	ImageMIME     string         `json:"imageMime,omitempty"`
	HasResult     bool           `json:"hasResult"`
	ResultMIME    string         `json:"resultMime,omitempty"`
	ResultNote    string         `json:"resultNote,omitempty"`
	Loading       bool           `json:"loading"`
	ActiveProcess Process        `json:"activeProcess"`
	LastApplied   *effect.Config `json:"lastApplied,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// State returns a consistent snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Loading:       s.loading,
		ActiveProcess: s.active,
		Error:         s.errMsg,
	}
	if s.image != nil {
		st.HasImage = true
		st.FileName = s.image.FileName
		st.ImageMIME = s.image.MIMEType
	}
	if s.result != nil {
		st.HasResult = true
		st.ResultMIME = s.result.MIMEType
		st.ResultNote = s.result.Note
	}
	if s.lastApplied != nil {
		cfg := *s.lastApplied
		st.LastApplied = &cfg
	}
	return st
}

// Original returns the uploaded photo, if any.
func (s *Session) Original() (*imagefile.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.image == nil {
		return nil, false
	}
	return s.image, true
}

// Result returns the generated photo, if any.
func (s *Session) Result() (*GeneratedImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, false
	}
	return s.result, true
}
