// Package cli implements the interactive aviato operator console: it mints a
// token for the user being impersonated and drives the gRPC
// AvailabilityService.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/aviato/internal/client/client"
	"github.com/dmitrijs2005/aviato/internal/client/config"
)

type apiClient interface {
	SetAccessToken(token string)
	SetTimezoneOffset(offset *int)
	CheckAvailability(ctx context.Context, userID string) (*client.Availability, error)
	StartConversation(ctx context.Context, userID string) (*client.Conversation, error)
	SendMessage(ctx context.Context, userID, text string) (*client.Message, error)
	CreateUser(ctx context.Context, email, name string) (*client.User, error)
	Close() error
}

type App struct {
	config   *config.Config
	api      apiClient
	actingAs string
	offset   *int
}

func NewApp(c *config.Config) (*App, error) {
	api, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{config: c, api: api}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	printlnFn("aviato CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) isActing() bool {
	return a.actingAs != ""
}

func (a *App) status() string {
	if a.actingAs == "" {
		return "anonymous"
	}
	return a.actingAs
}
