// Package render draws a Mirror to a terminal using termbox-go, grounded
// on the teacher's internal/client/ui_termbox.go TermboxUI (Init/Close/
// Render/RunSimpleEvacuateLoop/DisplayStaticText), generalized from its
// fixed two-tower-row layout into a scrolling hex grid plus a status/event
// pane, since HexRadius's board shape is scenario-defined rather than
// fixed.
package render

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"hexradius/internal/client"
)

// colWidth is the on-screen column stride for one hex tile; picked wide
// enough to fit a tile label (a signed height such as "+1", or "*" plus a
// power id cut to colWidth-1 characters) with room to spare, the
// same "how much room does one cell need" judgment call the teacher's
// DisplayStaticText call sites make ad hoc for tower/troop labels.
const colWidth = 6
const rowHeight = 3

// Renderer owns termbox's lifecycle and draws a client.Client's Mirror
// and EventLog each frame.
type Renderer struct{}

// NewRenderer mirrors the teacher's NewTermboxUI constructor.
func NewRenderer() *Renderer { return &Renderer{} }

// Init starts termbox, exactly as the teacher's TermboxUI.Init does.
func (r *Renderer) Init() error { return termbox.Init() }

// Close stops termbox.
func (r *Renderer) Close() { termbox.Close() }

// Render draws the board, player list, and recent event log, replacing
// the teacher's Render's hardcoded tower placeholders with data pulled
// live from c.Mirror.
func (r *Renderer) Render(c *client.Client) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	r.drawHeader(c)
	r.drawBoard(c)
	r.drawEvents(c)

	termbox.Flush()
}

func (r *Renderer) drawHeader(c *client.Client) {
	m := c.Mirror
	turnLine := fmt.Sprintf("map: %s  fog: %v  koth: %v  turn: player %d", m.MapName, m.FogOfWar, m.KingOfTheHill, m.CurrentPlayerID)
	drawText(0, 0, turnLine, termbox.ColorWhite, termbox.ColorDefault)

	x := 0
	for _, p := range m.Players {
		label := fmt.Sprintf("%s(%d):%d ", p.Colour, p.ID, p.Score)
		fg := colourAttribute(p.Colour)
		if p.ID == m.CurrentPlayerID {
			fg |= termbox.AttrBold
		}
		drawText(x, 1, label, fg, termbox.ColorDefault)
		x += runewidth.StringWidth(label)
	}

	if m.Over {
		result := "draw"
		if !m.Draw {
			result = m.WinnerColour + " wins"
		}
		drawText(0, 2, "GAME OVER: "+result, termbox.ColorYellow|termbox.AttrBold, termbox.ColorDefault)
	}
}

// drawBoard lays tiles out on a simple offset grid; true hex-to-screen
// projection is a rendering nicety the teacher's own UI never attempts
// either (ui_termbox.go places every element at hand-picked coordinates),
// so an offset grid keeping columns/rows readable is enough here.
func (r *Renderer) drawBoard(c *client.Client) {
	const originX, originY = 0, 4

	pawnAt := make(map[[2]int]client.PawnView)
	for _, p := range c.Mirror.Pawns() {
		pawnAt[[2]int{p.Col, p.Row}] = p
	}

	for _, t := range c.Mirror.Tiles() {
		x := originX + t.Col*colWidth + (t.Row%2)*(colWidth/2)
		y := originY + t.Row*rowHeight
		r.drawTile(x, y, t, pawnAt)
	}
}

func (r *Renderer) drawTile(x, y int, t client.TileView, pawnAt map[[2]int]client.PawnView) {
	fg, bg := termbox.ColorWhite, termbox.ColorBlack
	if t.Smashed {
		fg, bg = termbox.ColorDefault, termbox.ColorDefault
	} else if t.HasBlackHole {
		fg, bg = termbox.ColorMagenta, termbox.ColorBlack
	} else if t.Hill {
		bg = termbox.ColorYellow
	}

	label := fmt.Sprintf("%+d", t.Height)
	if t.HasPower {
		label = "*" + t.PowerID
		if len(label) > colWidth-1 {
			label = label[:colWidth-1]
		}
	}
	drawText(x, y, label, fg, bg)

	if p, ok := pawnAt[[2]int{t.Col, t.Row}]; ok {
		glyph := pawnGlyph(p.Colour)
		drawText(x, y+1, glyph, colourAttribute(p.Colour)|termbox.AttrBold, bg)
	}
}

func (r *Renderer) drawEvents(c *client.Client) {
	_, h := termbox.Size()
	lines := c.Events.Recent(8)
	base := h - len(lines) - 1
	for i, line := range lines {
		drawText(0, base+i, line, termbox.ColorCyan, termbox.ColorDefault)
	}
}

func drawText(x, y int, text string, fg, bg termbox.Attribute) {
	for i, ch := range text {
		termbox.SetCell(x+i, y, ch, fg, bg)
	}
}

func pawnGlyph(colour string) string {
	if len(colour) == 0 {
		return "?"
	}
	return colour[:1]
}

func colourAttribute(colour string) termbox.Attribute {
	switch colour {
	case "RED":
		return termbox.ColorRed
	case "BLUE":
		return termbox.ColorBlue
	case "GREEN":
		return termbox.ColorGreen
	case "YELLOW":
		return termbox.ColorYellow
	case "ORANGE":
		return termbox.ColorYellow | termbox.AttrBold
	case "PURPLE":
		return termbox.ColorMagenta
	default:
		return termbox.ColorWhite
	}
}

// PollCommand blocks for one keypress and reports it, mirroring the
// teacher's RunSimpleEvacuateLoop event switch but returning control to
// the caller after every key instead of owning the whole loop, since
// HexRadius's input model (choose a pawn, choose a move/power) needs
// multi-step prompts the teacher's single troop-hotkey scheme didn't.
func PollCommand() termbox.Event {
	return termbox.PollEvent()
}

// GetTextInput reads one line of text at (x, y), grounded on the
// teacher's TermboxUI.GetTextInput (ui_termbox.go): same
// prompt-then-collect-runes-until-Enter/Esc shape, kept nearly verbatim
// since HexRadius's command-line entry has the identical requirements.
func GetTextInput(prompt string, x, y int, fg, bg termbox.Attribute) string {
	drawText(x, y, prompt, fg, bg)
	termbox.Flush()

	var runes []rune
	inputX := x + len(prompt)

	for {
		ev := termbox.PollEvent()
		if ev.Type != termbox.EventKey {
			continue
		}
		switch ev.Key {
		case termbox.KeyEnter:
			return string(runes)
		case termbox.KeyEsc:
			return ""
		case termbox.KeySpace:
			runes = append(runes, ' ')
		case termbox.KeyBackspace, termbox.KeyBackspace2:
			if len(runes) > 0 {
				runes = runes[:len(runes)-1]
				termbox.SetCell(inputX+len(runes), y, ' ', fg, bg)
			}
		default:
			if ev.Ch != 0 {
				runes = append(runes, ev.Ch)
			}
		}
		for i := 0; i < 60; i++ {
			termbox.SetCell(inputX+i, y, ' ', fg, bg)
		}
		for i, ch := range runes {
			termbox.SetCell(inputX+i, y, ch, fg, bg)
		}
		termbox.Flush()
	}
}
