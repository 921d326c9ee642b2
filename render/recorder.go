// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// CommandType identifies a recorded canvas call.
type CommandType uint8

const (
	CmdClear CommandType = iota
	CmdFillQuad
	CmdTexturedQuad
	CmdLines
	CmdLineStrip
	CmdText
)

var commandTypeNames = [...]string{
	CmdClear:        "Clear",
	CmdFillQuad:     "FillQuad",
	CmdTexturedQuad: "TexturedQuad",
	CmdLines:        "Lines",
	CmdLineStrip:    "LineStrip",
	CmdText:         "Text",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is one recorded canvas call. Only the fields relevant to Type
// are set.
type Command struct {
	Type     CommandType
	Color    Color
	Quad     Quad
	Textured TexturedQuad
	Points   []Point
	Width    float64
	Text     string
	Align    Align
}

// Recorder is a Canvas that records calls instead of rasterizing them.
// It backs headless hosts and lets callers inspect or replay a frame.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	width, height int
	// CharWidth is the advance used by TextWidth.
	CharWidth float64
	commands  []Command
}

// NewRecorder creates a Recorder reporting the given canvas size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		width:     width,
		height:    height,
		CharWidth: 7,
		commands:  make([]Command, 0, 64),
	}
}

// Resize changes the reported canvas size.
func (r *Recorder) Resize(width, height int) {
	r.width, r.height = width, height
}

// Size implements Canvas.
func (r *Recorder) Size() (int, int) { return r.width, r.height }

// Clear implements Canvas.
func (r *Recorder) Clear(c Color) {
	r.commands = append(r.commands, Command{Type: CmdClear, Color: c})
}

// FillQuad implements Canvas.
func (r *Recorder) FillQuad(q Quad, c Color) {
	r.commands = append(r.commands, Command{Type: CmdFillQuad, Quad: q, Color: c})
}

// DrawTexturedQuad implements Canvas.
func (r *Recorder) DrawTexturedQuad(q *TexturedQuad) {
	r.commands = append(r.commands, Command{Type: CmdTexturedQuad, Textured: *q, Quad: q.Pos})
}

// DrawLines implements Canvas.
func (r *Recorder) DrawLines(pts []Point, c Color, width float64) {
	r.commands = append(r.commands, Command{Type: CmdLines, Points: clonePoints(pts), Color: c, Width: width})
}

// DrawLineStrip implements Canvas.
func (r *Recorder) DrawLineStrip(pts []Point, c Color, width float64) {
	r.commands = append(r.commands, Command{Type: CmdLineStrip, Points: clonePoints(pts), Color: c, Width: width})
}

// DrawText implements Canvas.
func (r *Recorder) DrawText(s string, at Point, align Align, c Color) {
	r.commands = append(r.commands, Command{Type: CmdText, Text: s, Points: []Point{at}, Align: align, Color: c})
}

// TextWidth implements Canvas.
func (r *Recorder) TextWidth(s string) float64 {
	return float64(len(s)) * r.CharWidth
}

// Commands returns the recorded commands.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Filter returns the recorded commands of type t.
func (r *Recorder) Filter(t CommandType) []Command {
	var out []Command
	for _, c := range r.commands {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// Reset drops all recorded commands.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
}

// Playback replays the recorded commands onto dst.
func (r *Recorder) Playback(dst Canvas) {
	Play(r.commands, dst)
}

// Play draws cmds onto dst in order.
func Play(cmds []Command, dst Canvas) {
	for i := range cmds {
		c := &cmds[i]
		switch c.Type {
		case CmdClear:
			dst.Clear(c.Color)
		case CmdFillQuad:
			dst.FillQuad(c.Quad, c.Color)
		case CmdTexturedQuad:
			dst.DrawTexturedQuad(&c.Textured)
		case CmdLines:
			dst.DrawLines(c.Points, c.Color, c.Width)
		case CmdLineStrip:
			dst.DrawLineStrip(c.Points, c.Color, c.Width)
		case CmdText:
			dst.DrawText(c.Text, c.Points[0], c.Align, c.Color)
		}
	}
}

func clonePoints(pts []Point) []Point {
	return append([]Point(nil), pts...)
}

var _ Canvas = (*Recorder)(nil)
