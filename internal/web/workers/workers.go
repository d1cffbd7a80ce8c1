// File: workers.go
// Title: Built-in Workers
// Description: Greeting, image, parameter echo, calculator, home page,
//              background colour and access log workers.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-15
// Modified: 2026-03-18
//
// Change History:
// - 2026-03-15 v0.1.0: Initial workers
// - 2026-03-18 v0.1.1: AccessLog worker

package workers

import (
	"context"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/msto63/smartweb/internal/web"
)

// Pages reached through internal dispatch
const (
	CalcPage = "/private/pages/calc.script"
	HomePage = "/private/pages/home.script"
)

// DefaultBackground is used by Home when the session has no bgcolor
const DefaultBackground = "7F7F7F"

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// HelloWorker greets the "name" parameter
type HelloWorker struct {
	// Now defaults to time.Now
	Now func() time.Time
}

func (w HelloWorker) ProcessRequest(rc *web.RequestContext) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	if err := rc.SetMimeType("text/html"); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("<html><body>\n<h1>Hello!!!</h1>\n")
	fmt.Fprintf(&sb, "<p>Now is: %s</p>\n", now().Format("2006-01-02 15:04:05"))
	name, ok := rc.Parameter("name")
	if !ok || strings.TrimSpace(name) == "" {
		sb.WriteString("<p>You did not send me your name!</p>\n")
	} else {
		name = strings.TrimSpace(name)
		fmt.Fprintf(&sb, "<p>Your name has %d letters.</p>\n", utf8.RuneCountInString(name))
		fmt.Fprintf(&sb, "<p>Hello, %s!</p>\n", html.EscapeString(name))
	}
	sb.WriteString("</body></html>\n")
	return rc.WriteText(sb.String())
}

// CircleWorker renders a filled circle as a PNG image
type CircleWorker struct {
	Size int
}

func (w CircleWorker) ProcessRequest(rc *web.RequestContext) error {
	size := w.Size
	if size <= 0 {
		size = 200
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	background := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	fill := color.RGBA{R: 0x1E, G: 0x6F, B: 0xC8, A: 0xFF}
	center := float64(size-1) / 2
	radius := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, fill)
			} else {
				img.Set(x, y, background)
			}
		}
	}

	if err := rc.SetMimeType("image/png"); err != nil {
		return err
	}
	return png.Encode(rc, img)
}

// EchoParams lists the request parameters as an HTML table
type EchoParams struct{}

func (EchoParams) ProcessRequest(rc *web.RequestContext) error {
	if err := rc.SetMimeType("text/html"); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("<html><body>\n<table border=\"1\">\n<tr><th>Name</th><th>Value</th></tr>\n")
	for _, name := range rc.ParameterNames() {
		v, _ := rc.Parameter(name)
		fmt.Fprintf(&sb, "<tr><td>%s</td><td>%s</td></tr>\n", html.EscapeString(name), html.EscapeString(v))
	}
	sb.WriteString("</table>\n</body></html>\n")
	return rc.WriteText(sb.String())
}

// SumWorker adds the integer parameters a (default 1) and b (default 2) and
// forwards to the calculator page with a, b and sum as temporary parameters
type SumWorker struct{}

func (SumWorker) ProcessRequest(rc *web.RequestContext) error {
	a := intParam(rc, "a", 1)
	b := intParam(rc, "b", 2)

	rc.SetTemporaryParameter("a", strconv.Itoa(a))
	rc.SetTemporaryParameter("b", strconv.Itoa(b))
	rc.SetTemporaryParameter("sum", strconv.Itoa(a+b))
	return forward(rc, CalcPage)
}

// Home forwards to the home page with the session background colour
type Home struct{}

func (Home) ProcessRequest(rc *web.RequestContext) error {
	bg, ok := rc.PersistentParameter("bgcolor")
	if !ok || bg == "" {
		bg = DefaultBackground
	}
	rc.SetTemporaryParameter("background", bg)
	return forward(rc, HomePage)
}

// BgColorWorker stores a valid bgcolor parameter in the session
type BgColorWorker struct{}

func (BgColorWorker) ProcessRequest(rc *web.RequestContext) error {
	if err := rc.SetMimeType("text/html"); err != nil {
		return err
	}

	bg, _ := rc.Parameter("bgcolor")
	updated := hexColor.MatchString(bg)
	if updated {
		rc.SetPersistentParameter("bgcolor", strings.ToUpper(bg))
	}

	var sb strings.Builder
	sb.WriteString("<html><body>\n")
	if updated {
		sb.WriteString("<p>Color updated.</p>\n")
	} else {
		sb.WriteString("<p>Color not updated.</p>\n")
	}
	sb.WriteString("<p><a href=\"/index2.html\">Back to home</a></p>\n</body></html>\n")
	return rc.WriteText(sb.String())
}

// AccessLogWorker shows the most recent access log entries
type AccessLogWorker struct {
	Store RecentLister
	Limit int
}

func (w AccessLogWorker) ProcessRequest(rc *web.RequestContext) error {
	if err := rc.SetMimeType("text/html"); err != nil {
		return err
	}
	if w.Store == nil {
		return rc.WriteText("<html><body>\n<p>The access log is disabled.</p>\n</body></html>\n")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	entries, err := w.Store.Recent(ctx, w.Limit)
	if err != nil {
		return fmt.Errorf("read access log: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("<html><body>\n<table border=\"1\">\n")
	sb.WriteString("<tr><th>Time</th><th>Host</th><th>Path</th><th>Status</th><th>Duration</th></tr>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			html.EscapeString(e.Host),
			html.EscapeString(e.Path),
			e.Status,
			e.Duration.Round(time.Microsecond))
	}
	sb.WriteString("</table>\n</body></html>\n")
	return rc.WriteText(sb.String())
}

func intParam(rc *web.RequestContext, name string, def int) int {
	raw, ok := rc.Parameter(name)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func forward(rc *web.RequestContext, page string) error {
	d := rc.Dispatcher()
	if d == nil {
		return fmt.Errorf("no dispatcher to forward to %s", page)
	}
	return d.Dispatch(page)
}
