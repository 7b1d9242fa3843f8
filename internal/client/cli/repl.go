package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isActing() bool
	As(ctx context.Context, args []string) error
	Timezone(ctx context.Context, args []string) error
	Check(ctx context.Context, args []string) error
	Start(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	AddUser(ctx context.Context, args []string) error
}

// runREPL reads commands line by line and dispatches them to a until EOF or
// "exit". The prompt shows statusFn(). Commands:
//
//	help                   show available commands
//	as <userId> | as -     impersonate a user, or drop the token
//	tz <minutes> | tz -    set or clear the timezone offset
//	check <userId>         check availability (no token needed)
//	start <userId>         start a conversation
//	send <userId> <text>   send a message
//	adduser <email> <name> register a user
//	exit | quit            leave the program
//
// Handler errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("aviato> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isActing() {
				printlnFn("Available commands: as, tz, check, start, send, adduser, exit")
			} else {
				printlnFn("Available commands: as, tz, check, exit")
			}

		case "as":
			_ = a.As(ctx, args)

		case "tz":
			_ = a.Timezone(ctx, args)

		case "check":
			_ = a.Check(ctx, args)

		case "start":
			_ = a.Start(ctx, args)

		case "send":
			_ = a.Send(ctx, args)

		case "adduser":
			_ = a.AddUser(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
