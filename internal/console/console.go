// Package console drives the conversation manager from a line-oriented text
// stream. Every change to the viewed conversation is rendered as it happens.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/TeamDman/Ehyaioess/internal/conversation"
	"github.com/TeamDman/Ehyaioess/internal/models"
	"github.com/TeamDman/Ehyaioess/internal/state"
)

var errNotViewing = errors.New("no conversation is being viewed; use /new or /view <id>")

const helpText = `commands:
  /new [title]            create a conversation and view it
  /list                   list conversations
  /view <id>              view a conversation
  /close                  stop viewing
  /title <text>           rename the viewed conversation
  /role <role> <text>     add a system, assistant or user message
  /history [n]            print the last n messages (all by default)
  /delete [id]            delete a conversation (the viewed one by default)
  /quit                   exit
anything else is added to the viewed conversation as a user message`

type Options struct {
	Prompt       string
	SystemPrompt string
}

type Console struct {
	manager *conversation.Manager
	viewer  *conversation.Viewer
	view    state.Readable[*models.Conversation]
	logger  *zap.Logger
	opts    Options

	out io.Writer
}

// New builds a console; view is normally the store the viewer writes to.
func New(manager *conversation.Manager, viewer *conversation.Viewer, view state.Readable[*models.Conversation], logger *zap.Logger, opts Options) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{manager: manager, viewer: viewer, view: view, logger: logger, opts: opts}
}

// Run reads commands from in until /quit, EOF or ctx is cancelled. Command
// errors are reported on out and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.out = out
	unsubscribe := c.view.Subscribe(c.render)
	defer unsubscribe()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(out, c.opts.Prompt)
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			select {
			case err := <-scanErr:
				return err
			default:
				return nil
			}
		}

		quit, err := c.exec(strings.TrimSpace(line))
		if err != nil {
			c.logger.Debug("Command failed", zap.String("line", line), zap.Error(err))
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (c *Console) exec(line string) (quit bool, err error) {
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return false, c.say(models.RoleUser, line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(c.out, helpText)
	case "/new":
		return false, c.newConversation(arg)
	case "/list":
		c.list()
	case "/view":
		if arg == "" {
			return false, errors.New("usage: /view <id>")
		}
		return false, c.viewer.Open(arg)
	case "/close":
		c.viewer.Close()
	case "/title":
		id, err := c.viewed()
		if err != nil {
			return false, err
		}
		return false, c.manager.UpdateConversationTitle(id, arg)
	case "/role":
		name, text, _ := strings.Cut(arg, " ")
		role, err := models.ParseAuthorRole(name)
		if err != nil {
			return false, err
		}
		return false, c.say(role, strings.TrimSpace(text))
	case "/history":
		return false, c.history(arg)
	case "/delete":
		if arg == "" {
			id, err := c.viewed()
			if err != nil {
				return false, err
			}
			arg = id
		}
		return false, c.manager.DeleteConversation(arg)
	default:
		return false, fmt.Errorf("unknown command %s; try /help", cmd)
	}
	return false, nil
}

func (c *Console) viewed() (string, error) {
	id := c.viewer.ViewedID()
	if id == "" {
		return "", errNotViewing
	}
	return id, nil
}

func (c *Console) say(role models.AuthorRole, text string) error {
	id, err := c.viewed()
	if err != nil {
		return err
	}
	if text == "" {
		return errors.New("empty message")
	}
	_, err = c.manager.SaveMessage(id, role, text)
	return err
}

func (c *Console) newConversation(title string) error {
	conv, err := c.manager.CreateConversation(title)
	if err != nil {
		return err
	}
	if c.opts.SystemPrompt != "" {
		if _, err := c.manager.SaveMessage(conv.ID, models.RoleSystem, c.opts.SystemPrompt); err != nil {
			return err
		}
	}
	return c.viewer.Open(conv.ID)
}

func (c *Console) list() {
	convs := c.manager.GetConversations()
	if len(convs) == 0 {
		fmt.Fprintln(c.out, "no conversations")
		return
	}
	viewed := c.viewer.ViewedID()
	for _, conv := range convs {
		marker := " "
		if conv.ID == viewed {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s %s  %s (%d)\n", marker, conv.ID, conv.Title, len(conv.History))
	}
}

func (c *Console) history(arg string) error {
	id, err := c.viewed()
	if err != nil {
		return err
	}
	limit := 0
	if arg != "" {
		if limit, err = strconv.Atoi(arg); err != nil || limit < 0 {
			return fmt.Errorf("invalid message count %q", arg)
		}
	}
	msgs, err := c.manager.GetConversationHistory(id, limit)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		fmt.Fprintf(c.out, "%s: %s\n", msg.Author, msg.Content)
	}
	return nil
}

func (c *Console) render(conv *models.Conversation) {
	if c.out == nil {
		return
	}
	if conv == nil {
		fmt.Fprintln(c.out, "(no conversation)")
		return
	}
	fmt.Fprintf(c.out, "== %s [%s] %d message(s)\n", conv.Title, conv.ID, len(conv.History))
	if last, ok := conv.LatestMessage(); ok {
		fmt.Fprintf(c.out, "   %s: %s\n", last.Author, last.Content)
	}
}
