package terminal

import (
	"strings"

	"github.com/rewired-gh/coinboard/internal/render"
)

var mdEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "#", `\#`)

// Markdown renders a widget as a markdown section.
func Markdown(w render.Widget) string {
	var b strings.Builder
	b.WriteString("## " + mdEscaper.Replace(w.Title) + "\n\n")

	if w.Failed() {
		b.WriteString("> ⚠️ " + mdEscaper.Replace(w.Err) + "\n")
		return b.String()
	}
	if w.Empty {
		for _, l := range w.Lines {
			b.WriteString("_" + mdEscaper.Replace(l.Text) + "_\n")
		}
		return b.String()
	}

	for _, l := range w.Lines {
		b.WriteString("- ")
		switch l.Tone {
		case render.ToneUp:
			b.WriteString("▲ ")
		case render.ToneDown:
			b.WriteString("▼ ")
		}
		text := mdEscaper.Replace(l.Text)
		if l.Link != "" {
			text = "[" + text + "](" + l.Link + ")"
		}
		b.WriteString(text)
		if l.Action != "" {
			b.WriteString(" `" + l.Action + "`")
		}
		b.WriteString("\n")
		if l.Detail != "" {
			b.WriteString("  " + mdEscaper.Replace(l.Detail) + "\n")
		}
	}
	if w.Footer != "" {
		b.WriteString("\n**" + mdEscaper.Replace(w.Footer) + "**\n")
	}
	return b.String()
}
