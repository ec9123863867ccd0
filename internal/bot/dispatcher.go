package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ashureev/proxybot/internal/auth"
	"github.com/ashureev/proxybot/internal/session"
	"github.com/ashureev/proxybot/internal/store"
)

// Dispatcher routes inbound messages to fixed command handlers or to the
// conversation state machine, and owns per-sender turn serialization.
type Dispatcher struct {
	sessions  session.Store
	directory store.Directory
	auth      auth.Authorizer
	sender    Sender
	proxyHost string
	proxyPort string
	logger    *slog.Logger

	// turnLocks serializes the read-decide-write cycle of a turn per
	// sender, so a rapid double-send cannot lose a session update.
	turnLocks sync.Map // sender -> *sync.Mutex
}

// NewDispatcher creates a dispatcher with its collaborators.
func NewDispatcher(sessions session.Store, directory store.Directory, authorizer auth.Authorizer, sender Sender, proxyHost, proxyPort string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sessions:  sessions,
		directory: directory,
		auth:      authorizer,
		sender:    sender,
		proxyHost: proxyHost,
		proxyPort: proxyPort,
		logger:    logger,
	}
}

// HandleMessage processes one inbound message to completion. Messages for
// different senders may be handled concurrently; messages for the same
// sender are serialized.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg Message) {
	if msg.Sender == "" {
		d.logger.Debug("message without sender username ignored", "chat_id", msg.ChatID)
		return
	}

	lock, _ := d.turnLocks.LoadOrStore(msg.Sender, &sync.Mutex{})
	mutex := lock.(*sync.Mutex)
	mutex.Lock()
	defer mutex.Unlock()

	name, args, isCommand := parseCommand(msg.Text)
	if !isCommand {
		d.handleConversation(ctx, msg)
		return
	}

	switch name {
	case "users_stats":
		d.handleUsersStats(ctx, msg)
	case "create_user":
		d.handleCreateUser(ctx, msg)
	case "delete_user":
		d.handleDeleteUser(ctx, msg)
	case "get_users":
		d.handleGetUsers(ctx, msg)
	case "generate_pass":
		d.handleGeneratePass(ctx, msg, args)
	default:
		// Unknown commands are deliberately not answered.
		d.logger.Debug("unknown command ignored", "command", name, "user", msg.Sender)
	}
}

// parseCommand splits "/name args" into its parts. isCommand is false for
// plain text, which belongs to the active conversation.
func parseCommand(text string) (name, args string, isCommand bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	rest := text[1:]
	name = rest
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		name = rest[:i]
		args = strings.TrimSpace(rest[i+1:])
	}
	// Commands in group chats arrive as /name@BotName.
	if j := strings.Index(name, "@"); j >= 0 {
		name = name[:j]
	}
	return name, args, true
}

// requireAdmin checks the authorization oracle before any state mutation
// or directory access. An oracle failure denies access (fail closed).
func (d *Dispatcher) requireAdmin(ctx context.Context, msg Message) bool {
	isAdmin, err := d.auth.IsAdmin(ctx, msg.Sender)
	if err != nil {
		d.logger.Error("admin check failed", "user", msg.Sender, "error", err)
		isAdmin = false
	}
	if !isAdmin {
		d.send(ctx, msg.ChatID, msgAdminOnly, SendOptions{})
		return false
	}
	return true
}

// reportFailure logs a collaborator failure and relays its description to
// the operator. This is an admin-only tool, so raw detail is preferred
// over a sanitized message.
func (d *Dispatcher) reportFailure(ctx context.Context, msg Message, op string, err error) {
	d.logger.Error("turn aborted", "op", op, "user", msg.Sender, "error", err)
	d.send(ctx, msg.ChatID, err.Error(), SendOptions{RemoveKeyboard: true})
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, text string, opts SendOptions) {
	if err := d.sender.Send(ctx, chatID, text, opts); err != nil {
		d.logger.Error("send message failed", "chat_id", chatID, "error", err)
	}
}
