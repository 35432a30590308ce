package main

import (
	"fmt"

	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/fs"
)

// Run executes the posts command.
func (c *PostsCmd) Run(deps *Dependencies) error {
	if c.Images && c.Out == "" {
		return locrag.Errorf(locrag.EINVALID, "--images requires --out")
	}

	req := &locrag.PostRequest{
		Topic:    c.Topic,
		Platform: locrag.Platform(c.Platform),
		Tone:     c.Tone,
		Words:    c.Words,
		Hashtags: c.Hashtags,
		Variants: c.Variants,
	}
	posts, err := deps.Session.WritePosts(deps.Ctx, req, c.Images)
	if err != nil {
		return err
	}

	fmt.Fprintln(deps.Stdout, posts.Text)
	if posts.ImageErr != nil {
		fmt.Fprintf(deps.Stderr, "warning: images not generated: %s\n", locrag.ErrorMessage(posts.ImageErr))
	}

	if c.Out == "" {
		return nil
	}
	paths, err := fs.NewWriter(c.Out).WritePosts(req, posts)
	for _, p := range paths {
		fmt.Fprintf(deps.Stdout, "Wrote %s\n", p)
	}
	return err
}
