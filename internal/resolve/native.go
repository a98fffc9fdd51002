package resolve

import (
	"context"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/stupside/mp3relay/internal/media"
)

// Native looks up metadata in-process through the YouTube player API,
// without spawning yt-dlp.
type Native struct {
	client  *youtube.Client
	timeout time.Duration
}

// NewNative creates a Native lookup with the given per-call timeout.
func NewNative(timeout time.Duration) *Native {
	return &Native{
		client:  &youtube.Client{},
		timeout: timeout,
	}
}

// Lookup implements MetadataLookup.
func (n *Native) Lookup(ctx context.Context, videoID string) (*media.TrackMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	video, err := n.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, upstreamError(err.Error(), err)
	}

	var thumbnail string
	if len(video.Thumbnails) > 0 {
		// Thumbnails are ordered smallest first
		thumbnail = video.Thumbnails[len(video.Thumbnails)-1].URL
	}

	var uploadDate string
	if !video.PublishDate.IsZero() {
		uploadDate = video.PublishDate.Format("20060102")
	}

	duration := int64(video.Duration / time.Second)

	return &media.TrackMetadata{
		ID:           video.ID,
		Title:        video.Title,
		Duration:     duration,
		DurationText: media.FormatDuration(duration),
		Channel:      video.Author,
		Thumbnail:    thumbnail,
		Description:  media.TruncateDescription(video.Description),
		ViewCount:    int64(video.Views),
		UploadDate:   uploadDate,
	}, nil
}

var (
	_ MetadataLookup = (*Native)(nil)
	_ MetadataLookup = (*YTDLP)(nil)
)
