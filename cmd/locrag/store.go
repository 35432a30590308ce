package main

import (
	"fmt"

	"github.com/fwojciec/locrag"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	fmt.Fprintln(deps.Stdout, locrag.Status(deps.Session))
	return nil
}

// Run executes the create command.
func (c *CreateCmd) Run(deps *Dependencies) error {
	return createStore(deps)
}

// createStore creates a store and reports it. A store that could not be
// saved is still usable for this run, so the save failure is only a warning.
func createStore(deps *Dependencies) error {
	id, err := deps.Session.CreateStore(deps.Ctx)
	if id == "" {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Created store %s\n", id)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", locrag.ErrorMessage(err))
	}
	return nil
}

// Run executes the docs command.
func (c *DocsCmd) Run(deps *Dependencies) error {
	docs, err := deps.Session.Documents(deps.Ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, locrag.FormatDocuments(docs))
	return nil
}

// Run executes the reset command.
func (c *ResetCmd) Run(deps *Dependencies) error {
	if c.DeleteRemote && !c.Force {
		return locrag.Errorf(locrag.EINVALID, "use --force to confirm deleting the remote store")
	}

	id := deps.Session.StoreID()
	if c.DeleteRemote {
		if id == "" {
			return &locrag.Error{Code: locrag.ENOSTORE, Op: "delete store", Message: "no store configured"}
		}
		if err := deps.Store.DeleteStore(deps.Ctx, id); err != nil {
			return locrag.RemoteError("delete store", err)
		}
		fmt.Fprintf(deps.Stdout, "Deleted store %s\n", id)
	}

	if err := deps.Session.Reset(deps.Ctx); err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, "Store reset. Run 'locrag create' to start a new one.")
	return nil
}
