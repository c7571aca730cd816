// Package views renders the operator page. Components live in views.templ;
// run templ generate after editing it.
package views

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/JonMunkholm/casemaster/internal/ui"
)

// PanelID is the element the page script replaces on every state event.
const PanelID = "panel"

// PanelHTML renders v's panel to a string for the event stream.
func PanelHTML(ctx context.Context, v ui.View) (string, error) {
	var b strings.Builder
	if err := Panel(v).Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Event is the payload of one state event.
type Event struct {
	ui.View
	HTML string `json:"html"`
}

// EncodeEvent renders v and returns the JSON payload for the event stream.
func EncodeEvent(ctx context.Context, v ui.View) ([]byte, error) {
	html, err := PanelHTML(ctx, v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{View: v, HTML: html})
}

func toneName(t ui.Tone) string {
	switch t {
	case ui.ToneProcessing, ui.ToneSuccess, ui.ToneError:
		return string(t)
	default:
		return "neutral"
	}
}
