package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	resume(ctx context.Context, err error) error
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	Inboxes(ctx context.Context) error
	Select(ctx context.Context, id string) error
	Messages(ctx context.Context) error
	Refresh(ctx context.Context) error
	Reload(ctx context.Context) error
	Stats(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Ask(ctx context.Context, prompt string) error
	History(ctx context.Context) error
	ClearHistory(ctx context.Context) error
	Link(ctx context.Context, provider string) error
	Linked(ctx context.Context) error
	Hide(ctx context.Context, id string) error
}

// runREPL starts a simple read–eval–print loop for the SentinelIQ CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx ends, or when the user types "exit"
// or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help             show available commands
//	  - signup           create an account
//	  - login            authenticate
//	  - exit | quit      leave the program
//
//	Logged in:
//	  - inboxes          list linked inboxes
//	  - select <id>      switch inbox
//	  - (m)essages       list messages of the selected inbox
//	  - refresh          fetch the selected inbox again
//	  - reload           reload identity, inboxes and messages
//	  - stats            trusted/flagged counts
//	  - show <id>        open a message
//	  - ask [prompt]     ask the assistant about the open message
//	  - history [clear]  prompts sent from this machine, or forget them
//	  - link <provider>  link another inbox
//	  - linked           pick up inboxes linked in the browser
//	  - hide <id>        hide an inbox for this session
//	  - logout           log out
//
// Handler errors are printed by report; the loop itself keeps going. When a
// command fails because the session ended, the user is asked to log in again
// instead.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	run := func(err error) { report(a.resume(ctx, err)) }

	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("siq %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: inboxes, select, (m)essages, refresh, reload, stats, show, ask, history, link, linked, hide, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, exit")
			}

		case "signup":
			report(a.Signup(ctx))

		case "login":
			report(a.Login(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "inboxes":
			run(a.Inboxes(ctx))

		case "select":
			if len(args) != 1 {
				printlnFn("Usage: select <inbox id>")
				continue
			}
			run(a.Select(ctx, args[0]))

		case "m", "messages":
			run(a.Messages(ctx))

		case "refresh":
			run(a.Refresh(ctx))

		case "reload":
			run(a.Reload(ctx))

		case "stats":
			run(a.Stats(ctx))

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <message id>")
				continue
			}
			run(a.Show(ctx, args[0]))

		case "ask":
			run(a.Ask(ctx, strings.Join(args, " ")))

		case "history":
			switch {
			case len(args) == 0:
				run(a.History(ctx))
			case len(args) == 1 && args[0] == "clear":
				run(a.ClearHistory(ctx))
			default:
				printlnFn("Usage: history [clear]")
			}

		case "link":
			if len(args) != 1 {
				printlnFn("Usage: link <provider>")
				continue
			}
			run(a.Link(ctx, args[0]))

		case "linked":
			run(a.Linked(ctx))

		case "hide":
			if len(args) != 1 {
				printlnFn("Usage: hide <inbox id>")
				continue
			}
			run(a.Hide(ctx, args[0]))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
