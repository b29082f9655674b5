// Command hexradius-client is a termbox terminal client, grounded on the
// teacher's cmd/tcr-client-enhanced/main.go entry point but replacing its
// Authenticate/RequestMatchmaking login sequence with HexRadius's
// name-only INIT handshake (spec.md 1 Non-goals: no cryptographic
// authentication) and wiring up the termbox UI the teacher's own main.go
// left commented out ("Termbox initialization will be done later").
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nsf/termbox-go"

	"hexradius/internal/client"
	"hexradius/internal/client/render"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	name := flag.String("name", "player", "player name to send in INIT")
	flag.Parse()

	c, err := client.Dial(*addr, *name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hexradius-client:", err)
		os.Exit(1)
	}
	defer c.Close()

	renderer := render.NewRenderer()
	if err := renderer.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "hexradius-client: termbox init:", err)
		os.Exit(1)
	}
	defer renderer.Close()

	go func() {
		if err := c.ListenForMessages(func() { renderer.Render(c) }); err != nil {
			c.Events.Add(err.Error())
			renderer.Render(c)
		}
	}()

	renderer.Render(c)

	_, h := termbox.Size()
	promptY := h - 1

mainloop:
	for {
		ev := render.PollCommand()
		switch ev.Type {
		case termbox.EventKey:
			switch {
			case ev.Key == termbox.KeyEsc:
				break mainloop
			case ev.Ch == ':':
				line := render.GetTextInput("> ", 0, promptY, termbox.ColorWhite, termbox.ColorDefault)
				runCommand(c, strings.TrimSpace(line))
				renderer.Render(c)
			}
		case termbox.EventResize:
			renderer.Render(c)
		case termbox.EventError:
			break mainloop
		}
	}
}

// runCommand parses one of the console commands documented in spec.md
// 4.4's action set. The teacher's TermboxUI never grew past hotkey troop
// selection (ui_termbox.go's "1"-"6" deploy keys); HexRadius's much
// larger action surface (move/use/resign/admin) needs a small parser
// instead, kept in the same "collect a line, dispatch by verb" shape the
// teacher's GetTextInput was clearly built to feed.
func runCommand(c *client.Client, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	verb := strings.ToUpper(fields[0])
	args := fields[1:]

	var err error
	switch verb {
	case "MOVE":
		var fc, fr, tc, tr int
		if fc, fr, tc, tr, err = parseFourInts(args); err == nil {
			err = c.SendMove(fc, fr, tc, tr)
		}
	case "USE":
		err = runUse(c, args)
	case "RESIGN":
		err = c.SendResign()
	case "KICK":
		var id int
		if id, err = requireInt(args, 0); err == nil {
			err = c.SendKick(uint16(id))
		}
	case "ADDAI":
		if len(args) < 1 {
			err = fmt.Errorf("usage: addai <colour>")
		} else {
			err = c.SendAddAI(strings.ToUpper(args[0]))
		}
	default:
		err = fmt.Errorf("unknown command %q", verb)
	}
	if err != nil {
		c.Events.Add(err.Error())
	}
}

// runUse parses "use <col> <row> <power_id> [direction] [target_col] [target_row]".
func runUse(c *client.Client, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: use <col> <row> <power_id> [direction] [target_col] [target_row]")
	}
	col, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	row, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	powerID := args[2]

	var direction uint16
	if len(args) >= 4 {
		d, err := strconv.Atoi(args[3])
		if err != nil {
			return err
		}
		direction = uint16(d)
	}

	var targetCol, targetRow *int
	if len(args) >= 6 {
		tc, err := strconv.Atoi(args[4])
		if err != nil {
			return err
		}
		tr, err := strconv.Atoi(args[5])
		if err != nil {
			return err
		}
		targetCol, targetRow = &tc, &tr
	}

	return c.SendUse(col, row, powerID, direction, targetCol, targetRow)
}

func parseFourInts(args []string) (a, b, cc, d int, err error) {
	if len(args) < 4 {
		return 0, 0, 0, 0, fmt.Errorf("usage: move <from_col> <from_row> <to_col> <to_row>")
	}
	vals := make([]int, 4)
	for i := 0; i < 4; i++ {
		vals[i], err = strconv.Atoi(args[i])
		if err != nil {
			return 0, 0, 0, 0, err
		}
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

func requireInt(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.Atoi(args[i])
}
