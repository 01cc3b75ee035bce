// Package newport provides drivers for Newport ESP-family motion controllers
// and the two-axis polarizer assembly built on them.
package newport

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// RemoteBufferSize is the number of ASCII characters that fit in the
	// command buffer on the ESP controller.
	RemoteBufferSize = 80
)

// ErrBufferWouldOverflow is generated when the buffer on the ESP controller
// would overflow if the message was transmitted.
var ErrBufferWouldOverflow = errors.New("buffer too long, maximum command length is 80 characters")

// Command describes one entry in the controller's ASCII command set.
type Command struct {
	// Cmd is the opcode the controller sees, e.g. PA
	Cmd string `json:"cmd"`

	// Alias is a friendlier name, e.g. move-abs
	Alias string `json:"alias"`

	// Description is a brief description
	Description string `json:"description"`

	// IsMotion marks commands that start physical motion; they get a
	// wait-for-motion-stop chained after them so the controller serializes
	// subsequent commands itself
	IsMotion bool `json:"isMotion"`
}

var commands = []Command{
	{Cmd: "DH", Alias: "define-home", Description: "define home"},
	{Cmd: "PA", Alias: "move-abs", Description: "move to absolute position", IsMotion: true},
	{Cmd: "PR", Alias: "move-rel", Description: "move to relative position", IsMotion: true},
	{Cmd: "TE?", Alias: "read-error", Description: "read error code"},
	{Cmd: "OR", Alias: "search-home", Description: "search for home"},
	{Cmd: "OM", Alias: "set-home-search-mode", Description: "set home search mode"},
	{Cmd: "VA", Alias: "set-velocity", Description: "set velocity"},
	{Cmd: "WS", Alias: "wait-stop", Description: "wait for motion stop"},
}

// Commands the driver itself issues, resolved once at package init so a
// broken table fails loudly instead of producing malformed telegrams.
var (
	waitStop  = mustCommand("wait-stop")
	readError = mustCommand("read-error")
)

func mustCommand(alias string) Command {
	c, err := commandFromAlias(alias)
	if err != nil {
		panic(err)
	}
	return c
}

// ErrCommandNotFound is generated when an alias is unknown to this package.
type ErrCommandNotFound struct {
	Alias string
}

func (e ErrCommandNotFound) Error() string {
	return fmt.Sprintf("command %s not found", e.Alias)
}

func commandFromAlias(alias string) (Command, error) {
	for _, c := range commands {
		if c.Alias == alias {
			return c, nil
		}
	}
	return Command{}, ErrCommandNotFound{alias}
}

// Commands returns the command set understood by this package.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// makeTelegram builds the wire string for a command on an axis.  parameter may
// be empty.  Motion commands are chained with a wait-for-motion-stop so the
// controller blocks until the move completes; sequences of moves are then
// sequentially consistent without software-side synchronization.
func makeTelegram(c Command, axis int, parameter string) string {
	axisS := strconv.Itoa(axis)
	tele := axisS + c.Cmd + parameter
	if c.IsMotion {
		tele += ";" + axisS + waitStop.Cmd + "0"
	}
	return tele
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// positionQuery builds the position readback telegram for an axis, {axis}TP?
func positionQuery(axis int) string {
	return strconv.Itoa(axis) + "TP?"
}

// parsePosition parses the numeric prefix of a position query response.
func parsePosition(resp string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(resp), 64)
}
