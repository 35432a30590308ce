package locrag

import (
	"context"
	"fmt"
	"strings"
)

// ChatHelp describes the commands understood by Chat.
const ChatHelp = `Commands:
  /create        create a new empty store and make it current
  /upload PATH   add a local file to the store
  /url URL       add a web page to the store
  /docs          list documents in the store
  /status        show the current store
  /reset         forget the current store
  /help          show this help
  /quit          exit
Anything else is a question about your documents.`

// Reply is the outcome of one chat line.
type Reply struct {
	Text string
	Quit bool
}

// Chat interprets lines typed into the terminal interfaces: slash commands
// drive the session and any other line is asked as a question.
type Chat struct {
	Session *Session

	// LoadFile reads a local file for /upload.
	LoadFile func(path string) (*Upload, error)

	// LoadURL fetches a web page for /url. Nil disables the command.
	LoadURL func(ctx context.Context, url string) (*Upload, error)
}

// Handle runs one line. A failed command returns the error and, where part
// of the work succeeded, a reply describing it.
func (c *Chat) Handle(ctx context.Context, line string) (Reply, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Reply{}, nil
	}
	if !strings.HasPrefix(line, "/") {
		return c.ask(ctx, line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "/create":
		return c.create(ctx)
	case "/upload":
		if arg == "" {
			return Reply{}, Errorf(EINVALID, "usage: /upload PATH")
		}
		if c.LoadFile == nil {
			return Reply{}, Errorf(ECONFIG, "file upload is not available")
		}
		upload, err := c.LoadFile(arg)
		if err != nil {
			return Reply{}, err
		}
		return c.upload(ctx, upload)
	case "/url":
		if arg == "" {
			return Reply{}, Errorf(EINVALID, "usage: /url URL")
		}
		if c.LoadURL == nil {
			return Reply{}, Errorf(ECONFIG, "URL ingestion is not available")
		}
		upload, err := c.LoadURL(ctx, arg)
		if err != nil {
			return Reply{}, err
		}
		return c.upload(ctx, upload)
	case "/docs":
		return c.docs(ctx)
	case "/status":
		if c.Session.State() == StateNoStore {
			return Reply{Text: Status(c.Session) + " Use /create to make one."}, nil
		}
		return Reply{Text: Status(c.Session)}, nil
	case "/reset":
		if err := c.Session.Reset(ctx); err != nil {
			return Reply{Text: "Store forgotten for this session."}, err
		}
		return Reply{Text: "Store reset. Use /create to start a new one."}, nil
	case "/help":
		return Reply{Text: ChatHelp}, nil
	case "/quit", "/exit":
		return Reply{Quit: true}, nil
	default:
		return Reply{}, Errorf(EINVALID, "unknown command %s; type /help", cmd)
	}
}

func (c *Chat) ask(ctx context.Context, question string) (Reply, error) {
	turn, err := c.Session.Ask(ctx, question)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: FormatAnswer(turn.Answer)}, nil
}

func (c *Chat) create(ctx context.Context) (Reply, error) {
	id, err := c.Session.CreateStore(ctx)
	if id == "" {
		return Reply{}, err
	}
	return Reply{Text: "Created store " + id}, err
}

func (c *Chat) upload(ctx context.Context, upload *Upload) (Reply, error) {
	doc, err := c.Session.Upload(ctx, upload)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("Uploaded %s (%s)", doc.Title(), doc.State)}, nil
}

func (c *Chat) docs(ctx context.Context) (Reply, error) {
	docs, err := c.Session.Documents(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: FormatDocuments(docs)}, nil
}

// Status describes the session's current store.
func Status(s *Session) string {
	if s.State() == StateNoStore {
		return "No store configured yet."
	}
	return fmt.Sprintf("Store: %s (%s)", s.StoreID(), s.State())
}

// FormatAnswer renders an answer followed by its sources.
func FormatAnswer(a *ComposedAnswer) string {
	if a == nil {
		return ""
	}
	if len(a.Sources) == 0 {
		return a.Text
	}
	return a.Text + "\n\nSources: " + strings.Join(a.Sources, ", ")
}

// FormatDocuments renders one line per document.
func FormatDocuments(docs []*Document) string {
	if len(docs) == 0 {
		return "No documents."
	}
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s (%s)", d.Title(), d.State)
	}
	return b.String()
}
