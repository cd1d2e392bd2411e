// Package cli implements the interactive sealpost client: registration and
// login with password-derived keys, sealing and sending envelopes, and
// draining the inbox over polling or the realtime channel. All private key
// material lives only in process memory.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sealpost/internal/client/api"
	"github.com/dmitrijs2005/sealpost/internal/client/config"
	"github.com/dmitrijs2005/sealpost/internal/client/keys"
)

type App struct {
	config *config.Config
	api    *api.Client
	reader *bufio.Reader

	// session state, populated on login and dropped on logout
	email    string
	rcptID   string
	det      *keys.KeySet
	runtime  *keys.KeySet
	contacts map[string]api.User
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config:   c,
		api:      api.New(c.ServerEndpointAddr, c.TokenTTL),
		reader:   bufio.NewReader(os.Stdin),
		contacts: make(map[string]api.User),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	fmt.Println("Welcome to sealpost CLI (type 'help' for commands)")

	if err := a.api.Health(ctx); err != nil {
		fmt.Println("Warning: relay unreachable:", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.runtime != nil
}

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.email)
}
