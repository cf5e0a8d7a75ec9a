package telegram

import (
	"fmt"
	"strings"

	"github.com/rewired-gh/coinboard/internal/render"
)

// maxMessageLength is the Bot API's limit on message text.
const maxMessageLength = 4096

// formatWidget renders a widget as MarkdownV2. Rows that would push the
// message past the Bot API limit are dropped and counted.
func formatWidget(w render.Widget) string {
	var b strings.Builder
	b.WriteString("*" + escapeMarkdownV2(w.Title) + "*\n")

	if w.Failed() {
		b.WriteString("⚠️ " + escapeMarkdownV2(w.Err) + "\n")
		return b.String()
	}

	footer := ""
	if w.Footer != "" {
		footer = "\n_" + escapeMarkdownV2(w.Footer) + "_\n"
	}

	for i, l := range w.Lines {
		row := formatLine(l)
		if len([]rune(b.String()))+len([]rune(row))+len([]rune(footer))+32 > maxMessageLength {
			b.WriteString(escapeMarkdownV2(fmt.Sprintf("… and %d more", len(w.Lines)-i)) + "\n")
			break
		}
		b.WriteString(row)
	}
	b.WriteString(footer)
	return b.String()
}

func formatLine(l render.Line) string {
	var b strings.Builder
	switch l.Tone {
	case render.ToneUp:
		b.WriteString("🟢 ")
	case render.ToneDown:
		b.WriteString("🔴 ")
	}

	text := escapeMarkdownV2(l.Text)
	if l.Link != "" {
		text = fmt.Sprintf("[%s](%s)", text, escapeURL(l.Link))
	}
	b.WriteString(text)
	if l.Action != "" {
		b.WriteString(" `" + l.Action + "`")
	}
	b.WriteString("\n")
	if l.Detail != "" {
		b.WriteString("    _" + escapeMarkdownV2(l.Detail) + "_\n")
	}
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '\\', '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// escapeURL escapes the characters MarkdownV2 reserves inside a link target.
func escapeURL(url string) string {
	return strings.NewReplacer(`\`, `\\`, `)`, `\)`).Replace(url)
}
