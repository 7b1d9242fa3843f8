package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/aviato/internal/server/auth"
	"github.com/google/uuid"
)

var errUsage = errors.New("usage error")

func (a *App) report(err error) error {
	printlnFn("Error:", err.Error())
	return err
}

func (a *App) usage(text string) error {
	printlnFn("Usage:", text)
	return errUsage
}

// As impersonates the given user by minting an access token with the shared
// secret. "as -" drops the token.
func (a *App) As(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("as <userId> | as -")
	}

	if args[0] == "-" {
		a.actingAs = ""
		a.api.SetAccessToken("")
		printlnFn("Acting anonymously")
		return nil
	}

	if _, err := uuid.Parse(args[0]); err != nil {
		return a.usage("as <userId>, where userId is a UUID")
	}

	token, err := auth.GenerateToken(args[0], []byte(a.config.SecretKey), a.config.AccessTokenValidityDuration)
	if err != nil {
		return a.report(err)
	}

	a.actingAs = args[0]
	a.api.SetAccessToken(token)
	printlnFn("Acting as", args[0])
	return nil
}

// Timezone sets the offset, in minutes behind UTC, sent with each call.
// "tz -" stops sending it.
func (a *App) Timezone(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("tz <minutes> | tz -")
	}

	if args[0] == "-" {
		a.offset = nil
		a.api.SetTimezoneOffset(nil)
		printlnFn("Timezone offset cleared")
		return nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return a.usage("tz <minutes> | tz -")
	}

	a.offset = &n
	a.api.SetTimezoneOffset(&n)
	printlnFn("Timezone offset set to", n)
	return nil
}

func (a *App) Check(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("check <userId>")
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	res, err := a.api.CheckAvailability(ctx, args[0])
	if err != nil {
		return a.report(err)
	}

	if res.Reachable {
		printlnFn(fmt.Sprintf("%s is reachable (%s)", args[0], res.Mode))
	} else {
		printlnFn(fmt.Sprintf("%s is not reachable (%s): %s", args[0], res.Mode, res.Reason))
	}
	return nil
}

func (a *App) Start(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("start <userId>")
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	res, err := a.api.StartConversation(ctx, args[0])
	if err != nil {
		return a.report(err)
	}

	printlnFn(fmt.Sprintf("Conversation %s (%s)", res.ID, res.Status))
	return nil
}

func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return a.usage("send <userId> <text>")
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	res, err := a.api.SendMessage(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return a.report(err)
	}

	printlnFn(fmt.Sprintf("Message %s delivered to conversation %s", res.ID, res.ConversationID))
	return nil
}

// AddUser registers a user. The name may contain spaces.
func (a *App) AddUser(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return a.usage("adduser <email> <name>")
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	u, err := a.api.CreateUser(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return a.report(err)
	}

	printlnFn(fmt.Sprintf("User %s created for %s (%s)", u.ID, u.Email, u.AvailabilityMode))
	return nil
}
