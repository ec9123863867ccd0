package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ashureev/proxybot/internal/domain"
	"github.com/ashureev/proxybot/internal/password"
)

const (
	msgAdminOnly          = "Sorry, this functionality is available only for admin users."
	msgEnterCommand       = "Enter command"
	msgEnterNewUsername   = "Enter username for the new proxy user."
	msgEnterUsernameToDel = "Enter username to delete."
	msgUsernameEmpty      = "Username can not be empty. Enter the new one."
	msgUsernameTaken      = "This username is already taken. Enter another one."
	msgEnterPassword      = "Ok. Enter the password or use the suggested one."
	msgPasswordEmpty      = "Password can not be empty. Enter the new one."
	msgUserDeleted        = "User deleted."
	msgUserNotFound       = "User with provided username does not exists. Enter another one."
	msgNoUsers            = "No users."
)

func (d *Dispatcher) handleUsersStats(ctx context.Context, msg Message) {
	d.logger.Debug("received stats request", "user", msg.Sender)
	if !d.requireAdmin(ctx, msg) {
		return
	}

	stats, err := d.directory.GetUsersStats(ctx)
	if err != nil {
		d.reportFailure(ctx, msg, "get users stats", err)
		return
	}

	var b strings.Builder
	b.WriteString("*Data usage by users:*\n\n")
	for i, stat := range stats {
		fmt.Fprintf(&b, "*%d.* %s (%s): %s\n",
			i+1, stat.Username, lastSeenText(stat), humanize.Bytes(uint64(stat.BytesUsed)))
	}

	d.send(ctx, msg.ChatID, b.String(), SendOptions{Markdown: true, RemoveKeyboard: true})

	if err := d.sessions.Set(ctx, msg.Sender, domain.NewIdleSession()); err != nil {
		d.reportFailure(ctx, msg, "reset session", err)
	}
}

func lastSeenText(stat domain.UsageStat) string {
	if !stat.HasTraffic() || stat.LastSeenAt.Unix() <= 0 {
		return "never"
	}
	return humanize.Time(stat.LastSeenAt)
}

func (d *Dispatcher) handleCreateUser(ctx context.Context, msg Message) {
	d.logger.Debug("received create user request", "user", msg.Sender)
	if !d.requireAdmin(ctx, msg) {
		return
	}

	next := &domain.Session{State: domain.StateCreateUserEnterUsername, Data: map[string]string{}}
	if err := d.sessions.Set(ctx, msg.Sender, next); err != nil {
		d.reportFailure(ctx, msg, "seed create dialog", err)
		return
	}
	d.send(ctx, msg.ChatID, msgEnterNewUsername, SendOptions{RemoveKeyboard: true})
}

func (d *Dispatcher) handleDeleteUser(ctx context.Context, msg Message) {
	d.logger.Debug("received delete user request", "user", msg.Sender)
	if !d.requireAdmin(ctx, msg) {
		return
	}

	next := &domain.Session{State: domain.StateDeleteUserEnterUsername, Data: map[string]string{}}
	if err := d.sessions.Set(ctx, msg.Sender, next); err != nil {
		d.reportFailure(ctx, msg, "seed delete dialog", err)
		return
	}
	d.send(ctx, msg.ChatID, msgEnterUsernameToDel, SendOptions{RemoveKeyboard: true})
}

func (d *Dispatcher) handleGetUsers(ctx context.Context, msg Message) {
	d.logger.Debug("received get users request", "user", msg.Sender)
	if !d.requireAdmin(ctx, msg) {
		return
	}

	if err := d.sessions.Set(ctx, msg.Sender, domain.NewIdleSession()); err != nil {
		d.reportFailure(ctx, msg, "reset session", err)
		return
	}

	users, err := d.directory.GetUsers(ctx)
	if err != nil {
		d.reportFailure(ctx, msg, "get users", err)
		return
	}

	message := msgNoUsers
	if len(users) > 0 {
		var b strings.Builder
		b.WriteString("*Users*:\n\n")
		for i, u := range users {
			fmt.Fprintf(&b, "%d. %s\n", i+1, u)
		}
		fmt.Fprintf(&b, "\n*Total: %d*", len(users))
		message = b.String()
	}

	d.send(ctx, msg.ChatID, message, SendOptions{Markdown: true, RemoveKeyboard: true})
}

// handleGeneratePass is the only command available to non-admins.
// It never touches the session.
func (d *Dispatcher) handleGeneratePass(ctx context.Context, msg Message, args string) {
	length := password.DefaultLength
	if args != "" {
		if n, err := strconv.Atoi(args); err == nil && n > 0 {
			length = n
		}
	}

	pass, err := password.Generate(length)
	if err != nil {
		d.reportFailure(ctx, msg, "generate password", err)
		return
	}
	d.send(ctx, msg.ChatID, pass, SendOptions{})
}
