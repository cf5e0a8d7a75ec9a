// Package terminal prints dashboard widgets as styled markdown.
//
// In live mode every widget is printed as it arrives. Otherwise widgets are
// collected and Flush prints the whole dashboard once, in display order.
// Chart images are written as PNG files under the chart directory.
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/rewired-gh/coinboard/internal/dashboard"
	"github.com/rewired-gh/coinboard/internal/logger"
	"github.com/rewired-gh/coinboard/internal/models"
	"github.com/rewired-gh/coinboard/internal/render"
)

// Presenter is a dashboard.Presenter that writes to a terminal.
type Presenter struct {
	out      io.Writer
	chartDir string
	wordWrap int
	live     bool

	mu        sync.Mutex
	renderer  *glamour.TermRenderer
	widgets   map[string]render.Widget
	chartPath string
}

// New creates a presenter writing to out in the given theme.
func New(out io.Writer, chartDir string, wordWrap int, live bool, theme models.Theme) (*Presenter, error) {
	p := &Presenter{
		out:      out,
		chartDir: chartDir,
		wordWrap: wordWrap,
		live:     live,
		widgets:  make(map[string]render.Widget),
	}
	r, err := p.newRenderer(theme)
	if err != nil {
		return nil, err
	}
	p.renderer = r
	return p, nil
}

// styleFor maps a theme to a glamour standard style.
func styleFor(theme models.Theme) string {
	if theme == models.ThemeLight {
		return "light"
	}
	return "dark"
}

func (p *Presenter) newRenderer(theme models.Theme) (*glamour.TermRenderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styleFor(theme)),
		glamour.WithWordWrap(p.wordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r, nil
}

// SetTheme switches the markdown style.
func (p *Presenter) SetTheme(theme models.Theme) {
	r, err := p.newRenderer(theme)
	if err != nil {
		logger.Warn("Keeping previous terminal style: %v", err)
		return
	}
	p.mu.Lock()
	p.renderer = r
	p.mu.Unlock()
}

// ShowWidget records w and prints it in live mode.
func (p *Presenter) ShowWidget(_ context.Context, w render.Widget) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.widgets[w.ID] = w
	if !p.live {
		return nil
	}
	return p.print(Markdown(w))
}

// ShowChart writes the chart PNG to the chart directory.
func (p *Presenter) ShowChart(_ context.Context, png []byte, caption string) (dashboard.ChartHandle, error) {
	if err := os.MkdirAll(p.chartDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}
	path := filepath.Join(p.chartDir, fmt.Sprintf("fear-greed-%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, png, 0644); err != nil {
		return nil, fmt.Errorf("failed to write chart: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.chartPath = path
	p.widgets[render.IDFearGreedChart] = render.Widget{
		ID:    render.IDFearGreedChart,
		Title: render.Title(render.IDFearGreedChart),
		Lines: []render.Line{{Text: caption, Detail: "saved to " + path}},
	}
	if p.live {
		if err := p.print(Markdown(p.widgets[render.IDFearGreedChart])); err != nil {
			return nil, err
		}
	}
	return &chartFile{p: p, path: path}, nil
}

// Notify prints a one-off message.
func (p *Presenter) Notify(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.out, text)
	return err
}

// Flush prints every collected widget in display order.
func (p *Presenter) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	for _, id := range render.WidgetIDs {
		if w, ok := p.widgets[id]; ok {
			b.WriteString(Markdown(w))
			b.WriteString("\n")
		}
	}
	return p.print(b.String())
}

// ChartPath returns the path of the live chart image, if any.
func (p *Presenter) ChartPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chartPath
}

// print renders markdown through glamour. Callers hold mu.
func (p *Presenter) print(md string) error {
	out, err := p.renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(p.out, out)
	return err
}

type chartFile struct {
	p    *Presenter
	path string
}

// Dispose removes the chart image.
func (c *chartFile) Dispose(context.Context) error {
	c.p.mu.Lock()
	if c.p.chartPath == c.path {
		c.p.chartPath = ""
		delete(c.p.widgets, render.IDFearGreedChart)
	}
	c.p.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove chart %s: %w", c.path, err)
	}
	return nil
}
