package bot

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDownloadTimeout is the default timeout for photo downloads
	DefaultDownloadTimeout = 30 * time.Second
	// DefaultMaxPhotoSize is the default maximum photo size (10MB)
	DefaultMaxPhotoSize = 10 * 1024 * 1024
)

// PhotoDownloader fetches photo bytes from Telegram's file servers.
type PhotoDownloader struct {
	client  *resty.Client
	maxSize int64
}

// NewPhotoDownloader creates a new PhotoDownloader with default settings.
func NewPhotoDownloader() *PhotoDownloader {
	return &PhotoDownloader{
		client:  resty.New().SetDebug(false).SetTimeout(DefaultDownloadTimeout),
		maxSize: DefaultMaxPhotoSize,
	}
}

// WithTimeout sets a custom timeout for downloads.
func (d *PhotoDownloader) WithTimeout(timeout time.Duration) *PhotoDownloader {
	d.client.SetTimeout(timeout)
	return d
}

// WithMaxSize sets a custom maximum file size.
func (d *PhotoDownloader) WithMaxSize(maxSize int64) *PhotoDownloader {
	d.maxSize = maxSize
	return d
}

// DownloadFileID downloads a photo from Telegram using a file ID.
// It uses the provided function to resolve the file ID to a direct URL.
func (d *PhotoDownloader) DownloadFileID(
	ctx context.Context,
	getFileDirectURL func(fileID string) (string, error),
	fileID string,
) ([]byte, error) {
	log.Info().Str("fileID", fileID).Msg("downloading telegram file")

	url, err := getFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}

	// Raw response mode so the size limit applies while streaming, not after
	// resty has already buffered the whole body
	res, err := d.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download photo: %w", err)
	}
	defer res.RawBody().Close()

	if res.IsError() {
		return nil, fmt.Errorf("download failed: status %d", res.StatusCode())
	}

	contentType := res.RawResponse.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("invalid content type: expected image/*, got %s", contentType)
	}

	// Check Content-Length if available
	if res.RawResponse.ContentLength > d.maxSize {
		return nil, fmt.Errorf("photo too large: %d bytes exceeds limit of %d bytes", res.RawResponse.ContentLength, d.maxSize)
	}

	// Use LimitReader to enforce the limit even if Content-Length is missing or wrong
	data, err := io.ReadAll(io.LimitReader(res.RawBody(), d.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo data: %w", err)
	}
	if int64(len(data)) > d.maxSize {
		return nil, fmt.Errorf("photo too large: exceeds limit of %d bytes", d.maxSize)
	}

	return data, nil
}
