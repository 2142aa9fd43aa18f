package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
)

// source downloads a Telegram file when the flow asks for the image.
func (b *Bot) source(fileID string) capture.Source {
	return capture.SourceFunc(func(ctx context.Context) (*capture.Image, error) {
		data, err := b.download(ctx, fileID)
		if err != nil {
			return nil, capture.WrapError(capture.KindGallery, err)
		}
		return capture.FromBytes(data).Capture(ctx)
	})
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if int64(len(data)) > b.cfg.MaxBytes {
		return nil, capture.ErrTooLarge
	}
	return data, nil
}
