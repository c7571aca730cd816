package web

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/JonMunkholm/casemaster/internal/logging"
	"github.com/JonMunkholm/casemaster/internal/ui"
	"github.com/JonMunkholm/casemaster/internal/web/views"
)

// healthTimeout bounds the loop round trip made by /healthz.
const healthTimeout = 2 * time.Second

// dispatch runs action on the loop and responds with the resulting view.
// It reports whether the action ran.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, action func(m *ui.Machine) ui.View) bool {
	var v ui.View
	err := s.loop.Call(r.Context(), func() { v = action(s.machine) })
	if err != nil {
		s.respondError(w, r, core.UnknownError("web.dispatch", err), http.StatusServiceUnavailable)
		return false
	}
	s.respondView(w, r, v)
	return true
}

// respondView writes v as JSON, as a panel fragment, or redirects a plain
// form post back to the page.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request, v ui.View) {
	switch {
	case wantsJSON(r):
		writeJSON(w, http.StatusOK, v)
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := views.Panel(v).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render panel", "error", err)
		}
	case r.Method == http.MethodGet:
		s.renderPage(w, r, v)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, v ui.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Page(v).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, (*ui.Machine).View)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, (*ui.Machine).View)
}

// handleSelect stages the uploaded file and selects it. A form without a
// file is a cancelled file dialog.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			s.dispatch(w, r, (*ui.Machine).CancelFileDialog)
			return
		}
		s.respondError(w, r, core.ValidationError("upload.parse", "file too large or invalid form"), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		s.dispatch(w, r, (*ui.Machine).CancelFileDialog)
		return
	}
	if err != nil {
		s.respondError(w, r, core.ValidationError("upload.parse", "no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	staged, err := core.StageUpload(s.cfg.Upload.StagingDir, header.Filename, file)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	// Whichever side claims the staged file first owns it: the machine once
	// SelectFile runs, the handler if the call gave up before that.
	var owner atomic.Int32
	selected := s.dispatch(w, r, func(m *ui.Machine) ui.View {
		if !owner.CompareAndSwap(0, 1) {
			return m.View()
		}
		return m.SelectFile(staged)
	})
	if !selected && owner.CompareAndSwap(0, 2) {
		if err := core.RemoveStaged(staged); err != nil {
			logging.FromContext(r.Context()).Warn("failed to remove staged file", "path", staged.Path, "error", err)
		}
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, (*ui.Machine).Submit)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("file_name")
	s.dispatch(w, r, func(m *ui.Machine) ui.View { return m.RequestReport(name) })
}

// handleHealth reports whether the event loop still answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	var state string
	if err := s.loop.Call(ctx, func() { state = s.machine.State().Name() }); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "state": state})
}
