package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/locrag"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	turn, err := deps.Session.Ask(deps.Ctx, strings.Join(c.Question, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, locrag.FormatAnswer(turn.Answer))
	return nil
}
