package main

import (
	"fmt"

	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/fs"
)

// Run executes the upload command. It stops at the first failure.
func (c *UploadCmd) Run(deps *Dependencies) error {
	if len(c.Paths) == 0 && len(c.URL) == 0 {
		return locrag.Errorf(locrag.EINVALID, "nothing to upload; pass file paths or --url")
	}

	for _, path := range c.Paths {
		upload, err := fs.ReadUpload(path, deps.MaxUploadBytes)
		if err != nil {
			return err
		}
		if err := c.ingest(deps, upload); err != nil {
			return err
		}
	}
	for _, url := range c.URL {
		upload, err := deps.loadURL(deps.Ctx, url, c.Render)
		if err != nil {
			return err
		}
		if err := c.ingest(deps, upload); err != nil {
			return err
		}
	}
	return nil
}

func (c *UploadCmd) ingest(deps *Dependencies, upload *locrag.Upload) error {
	doc, err := deps.Session.Upload(deps.Ctx, upload)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Uploaded %s (%s)\n", doc.Title(), doc.State)
	return nil
}
