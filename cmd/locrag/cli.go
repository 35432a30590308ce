package main

import (
	"context"
	"io"

	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/fs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Session *locrag.Session
	Store   locrag.DocumentStore

	Fetcher       locrag.Fetcher
	RenderFetcher locrag.Fetcher
	Extractor     locrag.Extractor
	Converter     locrag.Converter

	// MaxUploadBytes caps local files passed to upload. Zero disables the check.
	MaxUploadBytes int64
}

// Chat returns the line interpreter shared by the chat and tui commands.
func (d *Dependencies) Chat() *locrag.Chat {
	c := &locrag.Chat{
		Session: d.Session,
		LoadFile: func(path string) (*locrag.Upload, error) {
			return fs.ReadUpload(path, d.MaxUploadBytes)
		},
	}
	if d.Fetcher != nil && d.Extractor != nil && d.Converter != nil {
		c.LoadURL = func(ctx context.Context, url string) (*locrag.Upload, error) {
			return d.loadURL(ctx, url, false)
		}
	}
	return c
}

func (d *Dependencies) loadURL(ctx context.Context, url string, render bool) (*locrag.Upload, error) {
	fetcher := d.Fetcher
	if render {
		fetcher = d.RenderFetcher
	}
	if fetcher == nil {
		if render {
			return nil, locrag.Errorf(locrag.ECONFIG, "JavaScript rendering is not available")
		}
		return nil, locrag.Errorf(locrag.ECONFIG, "URL ingestion is not available")
	}
	if d.Extractor == nil || d.Converter == nil {
		return nil, locrag.Errorf(locrag.ECONFIG, "URL ingestion is not available")
	}
	page, err := locrag.LoadWebPage(ctx, fetcher, d.Extractor, d.Converter, url)
	if err != nil {
		return nil, err
	}
	return page.Upload(), nil
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config     string `short:"c" type:"path" help:"Path to a locrag.yaml config file"`
	AutoCreate bool   `name:"auto-create" help:"Create a store when none is configured"`

	Chat   ChatCmd   `cmd:"" default:"1" help:"Chat with your documents (default)"`
	TUI    TUICmd    `cmd:"" name:"tui" help:"Chat in a full-screen terminal interface"`
	Status StatusCmd `cmd:"" help:"Show the current store"`
	Create CreateCmd `cmd:"" help:"Create a new empty store and make it current"`
	Upload UploadCmd `cmd:"" help:"Add local files or web pages to the store"`
	Ask    AskCmd    `cmd:"" help:"Ask a single question about your documents"`
	Docs   DocsCmd   `cmd:"" help:"List documents in the store"`
	Reset  ResetCmd  `cmd:"" help:"Forget the current store"`
	Posts  PostsCmd  `cmd:"" help:"Draft social media posts from your documents"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct{}

// TUICmd is the "tui" subcommand.
type TUICmd struct{}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}

// CreateCmd is the "create" subcommand.
type CreateCmd struct{}

// UploadCmd is the "upload" subcommand.
type UploadCmd struct {
	Paths  []string `arg:"" optional:"" type:"path" help:"Files to upload"`
	URL    []string `name:"url" short:"u" help:"Web page to add (repeatable)"`
	Render bool     `short:"r" help:"Render pages with a headless browser before extraction"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question []string `arg:"" help:"Question to ask about your documents"`
}

// DocsCmd is the "docs" subcommand.
type DocsCmd struct{}

// ResetCmd is the "reset" subcommand.
type ResetCmd struct {
	DeleteRemote bool `name:"delete-remote" help:"Also delete the remote store and its documents"`
	Force        bool `help:"Confirm deleting the remote store"`
}

// PostsCmd is the "posts" subcommand.
type PostsCmd struct {
	Topic    string `arg:"" help:"What the posts should be about"`
	Platform string `short:"p" default:"LinkedIn" help:"LinkedIn, Instagram, X/Twitter, Facebook Page or Facebook Group"`
	Tone     string `short:"t" default:"professional" help:"professional, informal, inspirational or technical"`
	Words    int    `short:"w" default:"90" help:"Approximate post length in words (40-200)"`
	Hashtags bool   `help:"Include hashtags"`
	Variants int    `short:"n" default:"2" help:"Number of drafts"`
	Images   bool   `help:"Also generate illustrations (requires --out)"`
	Out      string `short:"o" type:"path" help:"Directory to write posts.md and images to"`
}
