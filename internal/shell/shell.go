// Copyright (C) 2024  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/lukasdietrich/briefsend/internal/database"
	"github.com/lukasdietrich/briefsend/internal/delivery"
	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/outreach"
	"github.com/lukasdietrich/briefsend/internal/reconcile"
	"github.com/lukasdietrich/briefsend/internal/storage"
)

// Shell is an interactive shell to plan, send and reconcile outreach batches.
type Shell struct {
	services *services
	commands cmdSlice
}

// services are shared by all commands of a shell.
type services struct {
	conn           database.Conn
	suppressionDao database.SuppressionDao
	dispatcher     *delivery.Dispatcher
	archives       storage.Archives
	planner        *outreach.Planner
	reconciler     *reconcile.Reconciler

	// planned is the batch prepared by "batch plan". It lives as long as the shell.
	planned *outreach.BatchContext
}

// NewShell creates a new shell instance.
func NewShell(
	conn database.Conn,
	suppressionDao database.SuppressionDao,
	dispatcher *delivery.Dispatcher,
	archives storage.Archives,
	planner *outreach.Planner,
	reconciler *reconcile.Reconciler,
) *Shell {
	return &Shell{
		services: &services{
			conn:           conn,
			suppressionDao: suppressionDao,
			dispatcher:     dispatcher,
			archives:       archives,
			planner:        planner,
			reconciler:     reconciler,
		},
		commands: cmdSlice{
			{
				name: "batch",
				help: "Plan, send and recover batches of messages.",
				children: cmdSlice{
					{
						name:   "plan",
						help:   "Build the next batch from the prospects file.",
						action: planBatch,
					},
					{
						name:   "test",
						help:   "Send the first planned message as a test.",
						action: testBatch,
					},
					{
						name:   "start",
						help:   "Send the planned batch.",
						action: startBatch,
					},
					{
						name:   "resume",
						help:   "Continue an interrupted batch.",
						action: resumeBatch,
					},
					{
						name:   "discard",
						help:   "Drop an interrupted batch without sending the rest.",
						action: discardBatch,
					},
					{
						name:   "status",
						help:   "Show the planned and the interrupted batch.",
						action: statusBatch,
					},
				},
			},
			{
				name: "history",
				help: "Browse completed batches.",
				children: cmdSlice{
					{
						name:   "list",
						help:   "List completed batches, newest first.",
						action: listHistory,
					},
					{
						name:   "show",
						help:   "Show the classified results of a batch.",
						action: showHistory,
					},
				},
			},
			{
				name: "bounces",
				help: "Reconcile batches with bounce notifications.",
				children: cmdSlice{
					{
						name:   "scan",
						help:   "Scan the mailbox and classify the results of a batch.",
						action: scanBounces,
					},
				},
			},
			{
				name: "suppression",
				help: "Manage addresses which bounced before.",
				children: cmdSlice{
					{
						name:   "list",
						help:   "List suppressed addresses.",
						action: listSuppressions,
					},
					{
						name:   "remove",
						help:   "Allow suppressed addresses again.",
						action: removeSuppressions,
					},
				},
			},
		},
	}
}

// Run offers to resume an interrupted batch and starts the shell read loop.
func (s *Shell) Run() error {
	config := readline.Config{
		AutoComplete: readline.NewPrefixCompleter(s.commands.buildCompleters()...),
	}

	rl, err := readline.NewEx(&config)
	if err != nil {
		return err
	}

	defer rl.Close()

	if err := s.executeCommand(rl, "startup", offerPending); err != nil {
		if !isUnimportantError(err) {
			fmt.Printf("\nERROR:\n  %s\n\n", err)
		}
	}

	for {
		rl.SetPrompt(">>> ")

		line, err := rl.Readline()
		if err != nil {
			if isUnimportantError(err) {
				return nil
			}

			return err
		}

		args := strings.Fields(line)
		if err := s.handleCommand(rl, args); err != nil && !isUnimportantError(err) {
			fmt.Printf("\nERROR:\n  %s\n\n", err)
		}
	}
}

func isUnimportantError(err error) bool {
	return errors.Is(err, fuzzyfinder.ErrAbort) ||
		errors.Is(err, readline.ErrInterrupt) ||
		errors.Is(err, io.EOF)
}

type cmdFunc func(*cmdContext) error

type cmdSlice []cmdDef

func (s cmdSlice) lookup(args []string) (cmdDef, bool) {
	if len(s) > 0 && len(args) > 0 {
		var (
			head = args[0]
			tail = args[1:]
		)

		for _, cmd := range s {
			if head == cmd.name {
				if len(tail) > 0 {
					return cmd.children.lookup(tail)
				}

				return cmd, true
			}
		}
	}

	return cmdDef{}, false
}

func (s cmdSlice) buildCompleters() []readline.PrefixCompleterInterface {
	var completers []readline.PrefixCompleterInterface

	for _, cmd := range s {
		cmdCompleter := readline.PcItem(cmd.name, cmd.children.buildCompleters()...)
		completers = append(completers, cmdCompleter)
	}

	return completers
}

type cmdDef struct {
	name     string
	help     string
	action   cmdFunc
	children cmdSlice
}

type cmdContext struct {
	context.Context
	*services
	rl        *readline.Instance
	infoLines []string
}

func (c *cmdContext) info(format string, v ...interface{}) {
	text := fmt.Sprintf(format, v...)
	c.infoLines = append(c.infoLines, text)
}

func (c *cmdContext) ask(prompt string) (string, error) {
	return c.askWithDefault(prompt, "")
}

func (c *cmdContext) askWithDefault(prompt, defaultValue string) (string, error) {
	c.rl.HistoryDisable()
	defer c.rl.HistoryEnable()

	c.rl.SetPrompt(prompt)

	for {
		answer, err := c.rl.ReadlineWithDefault(defaultValue)
		if err != nil || len(answer) > 0 {
			return answer, err
		}
	}
}

// confirm asks a yes/no question. Anything but an explicit yes is a no.
func (c *cmdContext) confirm(prompt string, defaultYes bool) (bool, error) {
	defaultValue := "n"
	if defaultYes {
		defaultValue = "y"
	}

	answer, err := c.askWithDefault(prompt+" [y/n]: ", defaultValue)
	if err != nil {
		return false, err
	}

	return isYes(answer), nil
}

func (c *cmdContext) password(prompt string) ([]byte, error) {
	c.rl.HistoryDisable()
	defer c.rl.HistoryEnable()

	for {
		answer, err := c.rl.ReadPassword(prompt)
		if err != nil || len(answer) > 0 {
			return answer, err
		}
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (s *Shell) handleCommand(rl *readline.Instance, args []string) error {
	cmd, ok := s.commands.lookup(args)
	if ok {
		if cmd.action != nil {
			return s.executeCommand(rl, strings.Join(args, " "), cmd.action)
		}

		printCommandHelp(cmd)
	} else {
		printCommandUnknown(s.commands, args)
	}

	return nil
}

// executeCommand runs an action until it returns or the operator interrupts it. An interrupted
// batch keeps its checkpoint and can be resumed.
func (s *Shell) executeCommand(rl *readline.Instance, name string, action cmdFunc) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmdCtx := cmdContext{
		Context:  log.WithCommand(log.WithOrigin(ctx, "shell"), name),
		services: s.services,
		rl:       rl,
	}

	err := action(&cmdCtx)

	if len(cmdCtx.infoLines) > 0 {
		fmt.Println()

		for _, infoLine := range cmdCtx.infoLines {
			fmt.Print("  ")
			fmt.Println(infoLine)
		}

		fmt.Println()
	}

	return err
}

func printCommandUnknown(cmds cmdSlice, args []string) {
	fmt.Printf("\n  Unknown command %q\n", strings.Join(args, " "))
	printCommandUsage(cmds)
}

func printCommandHelp(cmd cmdDef) {
	fmt.Printf("\n  %s\n", cmd.help)
	printCommandUsage(cmd.children)
}

func printCommandUsage(cmds cmdSlice) {
	if len(cmds) > 0 {
		fmt.Println()
		fmt.Println("Commands:")

		for _, cmd := range cmds {
			fmt.Printf("  %-12s  %s\n", cmd.name, cmd.help)
		}
	}

	fmt.Println()
}
