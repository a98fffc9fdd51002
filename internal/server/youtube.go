package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stupside/mp3relay/internal/apperr"
	"github.com/stupside/mp3relay/internal/media"
	"github.com/stupside/mp3relay/internal/stream"
)

// videoIDParam reads and validates the videoId query parameter.
func videoIDParam(r *http.Request) (string, error) {
	id := r.URL.Query().Get("videoId")
	switch {
	case id == "":
		return "", apperr.BadInput("videoId query parameter is required")
	case !media.ValidVideoID(id):
		return "", apperr.BadInput("Invalid YouTube video ID format")
	}
	return id, nil
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	videoID, err := videoIDParam(r)
	if err != nil {
		fail(w, r, "", err)
		return
	}

	meta, err := s.metadata.Lookup(r.Context(), videoID)
	if err != nil {
		fail(w, r, "Failed to get video info", err)
		return
	}
	writeData(w, meta)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	videoID, err := videoIDParam(r)
	if err != nil {
		fail(w, r, "", err)
		return
	}

	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		meta, err := s.metadata.Lookup(r.Context(), videoID)
		if err != nil {
			slog.WarnContext(r.Context(), "metadata lookup failed, using fallback filename", "video_id", videoID, "error", err)
		} else {
			title = meta.Title
		}
	}

	filename := media.Filename(title, "youtube-"+videoID, s.downloads.Extension())
	s.stream(w, r, filename, media.YouTube(videoID))
}

// stream runs a download session and reports its failure as JSON when no
// byte of the stream has been sent yet.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, filename string, id media.Identifier) {
	sess := s.downloads.NewSession(filename)

	slog.InfoContext(r.Context(), "download started", "session_id", sess.ID, "provider", id.Provider, "id", id.Value, "filename", filename)

	err := sess.Run(r.Context(), w, id)
	if err == nil || sess.HeadersSent() || errors.Is(err, stream.ErrClientGone) {
		return
	}
	fail(w, r, "Download failed", err)
}
