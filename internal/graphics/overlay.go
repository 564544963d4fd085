package graphics

import (
	"image/color"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"casatour/internal/input"
	"casatour/internal/interact"
	"casatour/internal/interior"
	"casatour/internal/ui"
)

const textSpacing = 1

// Overlay draws laid-out ui nodes. Buttons go through raygui; a press is reported back to
// the page as an Activate event on the next frame.
type Overlay struct {
	Styles *ui.Engine // resolves classes drawn outside the node list (touch pad)
	font   rl.Font
	events *input.Queue
	cursor int32
}

// NewOverlay returns an overlay pushing button presses into events.
func NewOverlay(events *input.Queue, styles *ui.Stylesheet) *Overlay {
	eng := ui.New()
	if styles != nil {
		eng.SetStylesheet(styles)
	}
	return &Overlay{Styles: eng, events: events, cursor: int32(rl.MouseCursorDefault)}
}

// SetFont sets the font for labels and buttons. A zero font keeps raylib's default.
func (o *Overlay) SetFont(f rl.Font) {
	o.font = f
	if f.Texture.ID != 0 {
		gui.SetFont(f)
	}
}

// Draw renders placed in order; progress is the 0..1 fill of any progress node.
func (o *Overlay) Draw(placed []ui.Placed, progress float64) {
	for _, p := range placed {
		switch p.Node.Type {
		case "button":
			o.button(p)
		case "marker":
			o.marker(p)
		case "progress":
			o.progress(p, progress)
		default:
			o.box(p)
			o.text(p)
		}
	}
}

func rect(r ui.Rect) rl.Rectangle {
	return rl.NewRectangle(r.X, r.Y, r.Width, r.Height)
}

func (o *Overlay) box(p ui.Placed) {
	r := rect(p.Rect)
	s := p.Style
	if s.Background.A > 0 {
		if s.Radius > 0 {
			rl.DrawRectangleRounded(r, s.Radius, 8, s.Background)
		} else {
			rl.DrawRectangleRec(r, s.Background)
		}
	}
	if s.HasBorder {
		if s.Radius > 0 {
			rl.DrawRectangleRoundedLinesEx(r, s.Radius, 8, 1, s.Border)
		} else {
			rl.DrawRectangleLinesEx(r, 1, s.Border)
		}
	}
}

func (o *Overlay) measure(text string, size float32) rl.Vector2 {
	if o.font.Texture.ID != 0 {
		return rl.MeasureTextEx(o.font, text, size, textSpacing)
	}
	return rl.NewVector2(float32(rl.MeasureText(text, int32(size))), size)
}

func (o *Overlay) drawText(text string, at rl.Vector2, size float32, c color.RGBA) {
	if o.font.Texture.ID != 0 {
		rl.DrawTextEx(o.font, text, at, size, textSpacing, c)
		return
	}
	rl.DrawText(text, int32(at.X), int32(at.Y), int32(size), c)
}

func (o *Overlay) text(p ui.Placed) {
	if p.Node.Text == "" {
		return
	}
	pad := float32(p.Style.Padding)
	o.drawText(p.Node.Text, rl.NewVector2(p.Rect.X+pad, p.Rect.Y+pad), float32(p.Style.FontSize), p.Style.Color)
}

func (o *Overlay) centredText(text string, r ui.Rect, size float32, c color.RGBA) {
	m := o.measure(text, size)
	cx, cy := r.Center()
	o.drawText(text, rl.NewVector2(cx-m.X/2, cy-m.Y/2), size, c)
}

func (o *Overlay) button(p ui.Placed) {
	s := p.Style
	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, int64(s.FontSize))
	gui.SetStyle(gui.BUTTON, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(s.Background))
	gui.SetStyle(gui.BUTTON, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(s.Color))
	gui.SetStyle(gui.BUTTON, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(s.Border))
	if gui.Button(rect(p.Rect), p.Node.Text) {
		o.events.Push(input.Event{Kind: input.Activate, Target: p.Node.ID})
	}
}

func (o *Overlay) marker(p ui.Placed) {
	cx, cy := p.Rect.Center()
	radius := min(p.Rect.Width, p.Rect.Height) / 2
	rl.DrawCircleV(rl.NewVector2(cx, cy), radius, p.Style.Background)
	if p.Style.HasBorder {
		rl.DrawCircleLinesV(rl.NewVector2(cx, cy), radius, p.Style.Border)
	}
	o.centredText(p.Node.Text, p.Rect, float32(p.Style.FontSize), p.Style.Color)
}

func (o *Overlay) progress(p ui.Placed, value float64) {
	o.box(p)
	fill := p.Rect
	fill.Width *= float32(max(0, min(1, value)))
	rl.DrawRectangleRec(rect(fill), p.Style.Color)
	if p.Node.Text != "" {
		size := float32(p.Style.FontSize) * 0.7
		o.centredText(p.Node.Text, ui.Rect{X: p.Rect.X, Y: p.Rect.Y + p.Rect.Height, Width: p.Rect.Width, Height: size * 1.6}, size, p.Style.Color)
	}
}

// TouchPad draws the on-screen movement buttons.
func (o *Overlay) TouchPad(views []interior.TouchView) {
	if len(views) == 0 {
		return
	}
	normal, pressed := o.Styles.ClassStyle("touch"), o.Styles.ClassStyle("touch-pressed")
	for _, v := range views {
		s := normal
		if v.Pressed {
			s = pressed
		}
		r := ui.Rect{X: v.Rect.X, Y: v.Rect.Y, Width: v.Rect.W, Height: v.Rect.H}
		n := ui.Node{Type: "panel", Bounds: r}
		o.box(ui.Placed{Node: &n, Style: s, Rect: r})
		o.centredText(v.Label, r, float32(s.FontSize), s.Color)
	}
}

// Cursor switches the system cursor when the map asks for a different affordance.
func (o *Overlay) Cursor(c interact.Cursor) {
	want := int32(rl.MouseCursorDefault)
	if c == interact.CursorInteractive {
		want = int32(rl.MouseCursorPointingHand)
	}
	if want != o.cursor {
		rl.SetMouseCursor(want)
		o.cursor = want
	}
}
