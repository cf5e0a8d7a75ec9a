package dashboard

import (
	"context"

	"github.com/rewired-gh/coinboard/internal/models"
	"github.com/rewired-gh/coinboard/internal/render"
)

// Presenter displays widgets and chart images.
type Presenter interface {
	// ShowWidget replaces whatever is shown for w.ID.
	ShowWidget(ctx context.Context, w render.Widget) error
	// ShowChart displays a chart image and returns the handle that removes it.
	ShowChart(ctx context.Context, png []byte, caption string) (ChartHandle, error)
	// Notify shows a one-off message, such as a rejected input.
	Notify(ctx context.Context, text string) error
	// SetTheme switches the presenter's colour scheme.
	SetTheme(theme models.Theme)
}

// ChartHandle owns one displayed chart. The dashboard disposes the previous
// handle before showing a replacement, so at most one chart is live.
type ChartHandle interface {
	Dispose(ctx context.Context) error
}
