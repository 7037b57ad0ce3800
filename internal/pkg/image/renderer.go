// Package image captures PNG snapshots of the dashboard with a headless browser.
package image //nolint:revive // it's okay for an internal package to use this name

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
	"github.com/gabriel-vasile/mimetype"
)

// ErrNotPNG is returned when the browser does not produce a PNG image.
var ErrNotPNG = errors.New("snapshot is not a PNG image")

// Snapshotter takes screenshots of HTML pages and writes them as PNG.
type Snapshotter struct {
	options

	l *slog.Logger
}

// New builds a [Snapshotter].
func New(opts ...Option) *Snapshotter {
	return &Snapshotter{
		options: optionsWithDefaults(opts),
		l:       slog.Default().With(slog.String("module", "image")),
	}
}

// Render a PNG snapshot of the HTML page read from source.
func (s *Snapshotter) Render(ctx context.Context, dest io.Writer, source io.Reader) error {
	content, err := io.ReadAll(source)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}

	return s.capture(ctx, dest, "data:text/html;base64,"+base64.StdEncoding.EncodeToString(content))
}

func (s *Snapshotter) capture(parent context.Context, dest io.Writer, target string) error {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	ctx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	const qualityPNG = 100 // 100 to force PNG

	var screenshot []byte
	actions := []chromedp.Action{
		chromedp.Emulate(device.Info{
			Height:    s.height,
			Width:     s.width,
			Landscape: true,
		}),
		chromedp.Navigate(target),
	}

	if s.waitVisible != "" {
		actions = append(actions, chromedp.WaitVisible(s.waitVisible, chromedp.ByQuery))
	}

	actions = append(actions,
		chromedp.Sleep(s.settle),
		chromedp.FullScreenshot(&screenshot, qualityPNG),
	)

	if err := chromedp.Run(ctx, actions...); err != nil {
		return fmt.Errorf("taking screenshot: %w", err)
	}

	if mtype := mimetype.Detect(screenshot); !mtype.Is("image/png") {
		return fmt.Errorf("%w: detected %s", ErrNotPNG, mtype.String())
	}

	s.l.Debug("snapshot captured", slog.Int("bytes", len(screenshot)), slog.Int64("width", s.width), slog.Int64("height", s.height))

	if _, err := dest.Write(screenshot); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}

	return nil
}
