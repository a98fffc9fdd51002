// Package resolve turns YouTube video IDs into direct audio URLs and track
// metadata using yt-dlp, with an optional in-process metadata backend.
package resolve

import (
	"context"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/media"
)

// MetadataLookup fetches descriptive info about a video.
type MetadataLookup interface {
	Lookup(ctx context.Context, videoID string) (*media.TrackMetadata, error)
}

// NewMetadataLookup returns the metadata backend selected in cfg. The yt-dlp
// backend shares ytdlp's binary, cookies and timeout.
func NewMetadataLookup(cfg app.YouTubeConfig, ytdlp *YTDLP) MetadataLookup {
	if cfg.MetadataBackend == "native" {
		return NewNative(cfg.ResolveTimeout)
	}
	return ytdlp
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
