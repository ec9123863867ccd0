package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashureev/proxybot/internal/domain"
	"github.com/ashureev/proxybot/internal/password"
)

const dataKeyUsername = "username"

// handleConversation resolves one turn of the pending dialog for the
// sender. A collaborator failure aborts the turn and leaves the stored
// session exactly as it was, so the operator can resend the same input.
func (d *Dispatcher) handleConversation(ctx context.Context, msg Message) {
	sess, err := d.sessions.Get(ctx, msg.Sender)
	if err != nil {
		d.reportFailure(ctx, msg, "load session", err)
		return
	}
	if sess == nil {
		// No dialog was ever started; stay silent.
		d.logger.Debug("no pending dialog", "user", msg.Sender)
		return
	}

	switch sess.State {
	case domain.StateIdle:
		d.send(ctx, msg.ChatID, msgEnterCommand, SendOptions{})
	case domain.StateCreateUserEnterUsername:
		d.turnCreateUsername(ctx, msg)
	case domain.StateCreateUserEnterPassword:
		d.turnCreatePassword(ctx, msg, sess)
	case domain.StateDeleteUserEnterUsername:
		d.turnDeleteUsername(ctx, msg)
	default:
		d.logger.Error("unhandled conversation state", "state", sess.State, "user", msg.Sender)
	}
}

func (d *Dispatcher) turnCreateUsername(ctx context.Context, msg Message) {
	username := strings.TrimSpace(msg.Text)
	d.logger.Debug("entered username", "user", msg.Sender, "username", username)

	if username == "" {
		d.send(ctx, msg.ChatID, msgUsernameEmpty, SendOptions{})
		return
	}

	free, err := d.directory.IsUsernameFree(ctx, username)
	if err != nil {
		d.reportFailure(ctx, msg, "check username", err)
		return
	}
	if !free {
		d.send(ctx, msg.ChatID, msgUsernameTaken, SendOptions{})
		return
	}

	suggested, err := password.Generate(password.DefaultLength)
	if err != nil {
		d.reportFailure(ctx, msg, "suggest password", err)
		return
	}

	next := &domain.Session{
		State: domain.StateCreateUserEnterPassword,
		Data:  map[string]string{dataKeyUsername: username},
	}
	if err := d.sessions.Set(ctx, msg.Sender, next); err != nil {
		d.reportFailure(ctx, msg, "advance create dialog", err)
		return
	}

	d.send(ctx, msg.ChatID, msgEnterPassword, SendOptions{SuggestKeyboard: []string{suggested}})
}

func (d *Dispatcher) turnCreatePassword(ctx context.Context, msg Message, sess *domain.Session) {
	pass := strings.TrimSpace(msg.Text)
	if pass == "" {
		d.send(ctx, msg.ChatID, msgPasswordEmpty, SendOptions{})
		return
	}

	username := sess.Data[dataKeyUsername]
	if username == "" {
		// Scratch data lost between turns; restart rather than create a
		// nameless account.
		d.logger.Error("create dialog has no pending username", "user", msg.Sender)
		if err := d.sessions.Set(ctx, msg.Sender, domain.NewIdleSession()); err != nil {
			d.reportFailure(ctx, msg, "reset session", err)
			return
		}
		d.send(ctx, msg.ChatID, msgEnterCommand, SendOptions{RemoveKeyboard: true})
		return
	}

	if err := d.directory.CreateUser(ctx, username, pass); err != nil {
		d.reportFailure(ctx, msg, "create user", err)
		return
	}

	// The account exists from here on; a failing session write or reply
	// does not undo it.
	if err := d.sessions.Set(ctx, msg.Sender, domain.NewIdleSession()); err != nil {
		d.reportFailure(ctx, msg, "reset session", err)
		return
	}

	reply := fmt.Sprintf(
		"User created. Send this settings to him:\n\n*host:* %s\n*port:* %s\n*username:* %s\n*password:* %s",
		d.proxyHost, d.proxyPort, username, pass)
	d.send(ctx, msg.ChatID, reply, SendOptions{Markdown: true, RemoveKeyboard: true})
}

func (d *Dispatcher) turnDeleteUsername(ctx context.Context, msg Message) {
	username := strings.TrimSpace(msg.Text)
	d.logger.Debug("entered username", "user", msg.Sender, "username", username)

	if username == "" {
		d.send(ctx, msg.ChatID, msgUserNotFound, SendOptions{})
		return
	}

	free, err := d.directory.IsUsernameFree(ctx, username)
	if err != nil {
		d.reportFailure(ctx, msg, "check username", err)
		return
	}
	if free {
		d.send(ctx, msg.ChatID, msgUserNotFound, SendOptions{})
		return
	}

	if err := d.directory.DeleteUser(ctx, username); err != nil {
		d.reportFailure(ctx, msg, "delete user", err)
		return
	}

	if err := d.sessions.Set(ctx, msg.Sender, domain.NewIdleSession()); err != nil {
		d.reportFailure(ctx, msg, "reset session", err)
		return
	}

	d.send(ctx, msg.ChatID, msgUserDeleted, SendOptions{})
}
