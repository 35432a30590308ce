package main

import (
	"bufio"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/bubbletea"
)

// Run executes the chat command: a line-oriented loop over stdin.
func (c *ChatCmd) Run(deps *Dependencies) error {
	chat := deps.Chat()
	fmt.Fprintln(deps.Stdout, locrag.Status(deps.Session))
	fmt.Fprintln(deps.Stdout, "Type /help for commands.")

	scanner := bufio.NewScanner(deps.Stdin)
	for {
		fmt.Fprint(deps.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(deps.Stdout)
			return scanner.Err()
		}

		reply, err := chat.Handle(deps.Ctx, scanner.Text())
		if reply.Text != "" {
			fmt.Fprintln(deps.Stdout, reply.Text)
		}
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", locrag.ErrorMessage(err))
		}
		if reply.Quit {
			return nil
		}
		if deps.Ctx.Err() != nil {
			return nil
		}
	}
}

// Run executes the tui command.
func (c *TUICmd) Run(deps *Dependencies) error {
	p := tea.NewProgram(bubbletea.New(deps.Ctx, deps.Chat()),
		tea.WithContext(deps.Ctx),
		tea.WithInput(deps.Stdin),
		tea.WithOutput(deps.Stdout),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil && deps.Ctx.Err() == nil {
		return locrag.WrapError(locrag.EINTERNAL, "tui", err)
	}
	return nil
}
