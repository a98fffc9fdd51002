package server

import (
	"net/http"
	"strings"

	"github.com/stupside/mp3relay/internal/apperr"
	"github.com/stupside/mp3relay/internal/media"
)

type audioURLResponse struct {
	SongID   string `json:"songId"`
	AudioURL string `json:"audioUrl"`
}

// songIDParam reads and validates the songId path parameter.
func songIDParam(r *http.Request) (string, error) {
	id := r.PathValue("songId")
	switch {
	case id == "":
		return "", apperr.BadInput("songId parameter is required")
	case !media.ValidSongID(id):
		return "", apperr.BadInput("Invalid song ID format")
	}
	return id, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		fail(w, r, "", apperr.BadInput("query parameter is required"))
		return
	}

	result, err := s.catalog.Search(r.Context(), query)
	if err != nil {
		fail(w, r, "Search failed", err)
		return
	}
	writeData(w, result)
}

func (s *Server) handleSongPage(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if filename == "" {
		fail(w, r, "", apperr.BadInput("filename parameter is required"))
		return
	}

	page, err := s.catalog.SongPage(r.Context(), filename)
	if err != nil {
		fail(w, r, "Failed to fetch song page", err)
		return
	}
	writeData(w, page)
}

func (s *Server) handleAudioURL(w http.ResponseWriter, r *http.Request) {
	songID, err := songIDParam(r)
	if err != nil {
		fail(w, r, "", err)
		return
	}

	u, err := s.catalog.AudioURL(r.Context(), songID, media.AudioParamsFromQuery(r.URL.Query()))
	if err != nil {
		fail(w, r, "Failed to get audio URL", err)
		return
	}
	writeData(w, audioURLResponse{SongID: songID, AudioURL: u.String()})
}

func (s *Server) handleBigAzDownload(w http.ResponseWriter, r *http.Request) {
	songID, err := songIDParam(r)
	if err != nil {
		fail(w, r, "", err)
		return
	}

	q := r.URL.Query()
	title := strings.TrimSpace(q.Get("title"))
	if artist := strings.TrimSpace(q.Get("artist")); title != "" && artist != "" {
		title = artist + " - " + title
	}

	filename := media.Filename(title, "bigaz-"+songID, s.downloads.Extension())
	s.stream(w, r, filename, media.BigAz(songID, media.AudioParamsFromQuery(q)))
}
