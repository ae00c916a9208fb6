// Copyright (c) 2025 BVK Chaitanya

// Package telegram delivers trading notifications to a set of authorized
// Telegram users and answers their bot commands.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bvk/tradinhood/ctxutil"
	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/kvutil"
	"github.com/bvk/tradinhood/syncmap"
	"github.com/bvkgo/kv"
	"github.com/visvasity/cli"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type CmdFunc = cli.CmdFunc

type Command struct {
	Purpose string
	Handler CmdFunc
}

// Client implements the live trader's messenger. Chat ids of the users are
// learned from their first message to the bot and are saved in the database,
// so users must message the bot once before they can receive notifications.
type Client struct {
	cg ctxutil.CloseGroup

	db kv.Database

	mu sync.Mutex

	bot *bot.Bot

	self *models.User

	secrets *Secrets

	state *gobs.MessengerState

	commandMap syncmap.Map[string, *Command]
}

var start = time.Now()

func stateKey(botName string) string {
	return path.Join("/telegram", botName, "state")
}

func New(ctx context.Context, db kv.Database, secrets *Secrets) (*Client, error) {
	if err := secrets.Check(); err != nil {
		return nil, err
	}

	c := &Client{
		db:      db,
		secrets: secrets.Clone(),
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(c.handler),
	}
	b, err := bot.New(secrets.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create telegram bot: %w", err)
	}
	c.bot = b

	self, err := b.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch bot user: %w", err)
	}
	c.self = self

	state, err := kvutil.GetDB[gobs.MessengerState](ctx, db, stateKey(self.Username))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		state = &gobs.MessengerState{
			UserChatIDMap: make(map[string]int64),
		}
	}
	c.state = state

	c.commandMap.Store("uptime", &Command{
		Purpose: "Prints the trader uptime",
		Handler: c.uptime,
	})
	c.commandMap.Store("version", &Command{
		Purpose: "Prints version information",
		Handler: c.version,
	})
	if err := c.setCommands(ctx); err != nil {
		return nil, err
	}

	c.cg.Go(func(ctx context.Context) {
		c.bot.Start(ctx)
	})
	return c, nil
}

func (c *Client) Close() error {
	c.cg.Close()
	return nil
}

func (c *Client) BotUserName() string {
	return c.self.Username
}

func (c *Client) OwnerUserName() string {
	return c.secrets.OwnerID
}

// AddCommand registers a bot command. Output written to the cli.Stdout of
// the handler context is sent back as the reply.
func (c *Client) AddCommand(ctx context.Context, name, purpose string, handler CmdFunc) error {
	if len(name) == 0 || len(purpose) == 0 || handler == nil {
		return os.ErrInvalid
	}
	cmd := &Command{
		Purpose: purpose,
		Handler: handler,
	}
	if _, loaded := c.commandMap.LoadOrStore(name, cmd); loaded {
		return os.ErrExist
	}
	return c.setCommands(ctx)
}

func (c *Client) setCommands(ctx context.Context) error {
	var cmds []models.BotCommand
	c.commandMap.Range(func(name string, cmd *Command) bool {
		cmds = append(cmds, models.BotCommand{
			Command:     name,
			Description: cmd.Purpose,
		})
		return true
	})
	slices.SortFunc(cmds, func(a, b models.BotCommand) int {
		return strings.Compare(a.Command, b.Command)
	})

	ok, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: cmds})
	if err != nil {
		return fmt.Errorf("could not set bot commands: %w", err)
	}
	if !ok {
		return fmt.Errorf("bot commands are not accepted")
	}
	return nil
}

// parseCommand splits a "/cmd arg1 arg2" message into the command and its
// arguments.
func parseCommand(msg *models.Message) (string, []string, error) {
	if msg == nil || len(msg.Entities) == 0 {
		return "", nil, os.ErrInvalid
	}
	entity := msg.Entities[0]
	if entity.Type != models.MessageEntityTypeBotCommand || entity.Offset != 0 {
		return "", nil, os.ErrInvalid
	}
	if len(msg.Text) < entity.Length || !strings.HasPrefix(msg.Text, "/") {
		return "", nil, os.ErrInvalid
	}
	cmd := msg.Text[1:entity.Length]
	// Commands in groups are addressed as /cmd@botname.
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	args := strings.Fields(msg.Text[entity.Length:])
	return cmd, args, nil
}

func (c *Client) isValidUser(user string) bool {
	return user != "" && (user == c.secrets.OwnerID || user == c.secrets.AdminID || slices.Contains(c.secrets.OtherIDs, user))
}

// SendMessage sends the text to the owner and the other users with a known
// chat id. Delivery failures are logged and ignored.
func (c *Client) SendMessage(ctx context.Context, at time.Time, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := at.Format("2006-01-02 15:04:05 MST") + " " + text
	slog.Info("sending notification", "at", at, "message", text)

	receivers := append([]string{c.secrets.OwnerID}, c.secrets.OtherIDs...)
	for _, receiver := range receivers {
		cid, ok := c.state.UserChatIDMap[receiver]
		if !ok {
			slog.Warn("could not notify receiver without chat id", "receiver", receiver)
			continue
		}
		m := &bot.SendMessageParams{
			ChatID: cid,
			Text:   msg,
		}
		if _, err := c.bot.SendMessage(ctx, m); err != nil {
			slog.Error("could not notify receiver (ignored)", "receiver", receiver, "err", err)
		}
	}
	return nil
}

func (c *Client) handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	sender := update.Message.From.Username
	if !c.isValidUser(sender) {
		slog.Warn("received message from an unauthorized user (ignored)", "sender", sender, "message", update.Message.Text)
		return
	}

	if err := c.updateChatID(ctx, sender, update.Message.Chat.ID); err != nil {
		slog.Warn("could not update chat id (ignored)", "err", err)
	}

	reply := c.respond(ctx, update.Message)
	if len(reply) == 0 {
		return
	}
	disabled := true
	p := &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   reply,
		ReplyParameters: &models.ReplyParameters{
			MessageID: update.Message.ID,
		},
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: &disabled,
		},
	}
	if _, err := b.SendMessage(ctx, p); err != nil {
		slog.Error("could not reply to user command (ignored)", "user", sender, "err", err)
	}
}

// respond runs the command in the message and returns the reply text, which
// is the error message when the command fails.
func (c *Client) respond(ctx context.Context, msg *models.Message) string {
	name, args, err := parseCommand(msg)
	if err != nil {
		return ""
	}
	cmd, ok := c.commandMap.Load(name)
	if !ok {
		return fmt.Sprintf("unknown command %q", name)
	}

	var sb strings.Builder
	if err := cmd.Handler(cli.WithStdout(ctx, &sb), args); err != nil {
		slog.Error("could not handle user command", "cmd", name, "user", msg.From.Username, "err", err)
		return err.Error()
	}
	return sb.String()
}

func (c *Client) updateChatID(ctx context.Context, user string, chatID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.state.UserChatIDMap[user]; ok && id == chatID {
		return nil
	}
	c.state.UserChatIDMap[user] = chatID
	slog.Info("saving chat id of an authorized user", "user", user, "chat-id", chatID)
	return kvutil.SetDB(ctx, c.db, stateKey(c.BotUserName()), c.state)
}

func (c *Client) uptime(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)
	const day = 24 * time.Hour
	d := time.Since(start).Truncate(time.Second)
	if d < day {
		fmt.Fprintf(stdout, "%v", d)
		return nil
	}
	fmt.Fprintf(stdout, "%dd%v", d/day, d%day)
	return nil
}

func (c *Client) version(ctx context.Context, _ []string) error {
	stdout := cli.Stdout(ctx)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Errorf("could not read build information")
	}
	// Dependency versions can overflow the message size limits.
	fmt.Fprintln(stdout, "Go:", info.GoVersion)
	fmt.Fprintln(stdout, "Main Module:", info.Main.Path, info.Main.Version)
	for _, s := range info.Settings {
		if strings.HasPrefix(s.Key, "vcs.") {
			fmt.Fprintln(stdout, s.Key+":", s.Value)
		}
	}
	return nil
}
