package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dmitrijs2005/sealpost/internal/client/api"
	"github.com/dmitrijs2005/sealpost/internal/client/keys"
)

// Inbox drains queued envelopes and decrypts them with the messaging key.
// The drain is destructive on the server: a message is shown once.
func (a *App) Inbox(ctx context.Context) error {
	envs, err := a.api.Fetch(ctx, a.rcptID)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if len(envs) == 0 {
		fmt.Println("Inbox is empty.")
		return nil
	}

	for _, env := range envs {
		a.printEnvelope(env)
	}
	return nil
}

func (a *App) printEnvelope(env api.Envelope) {
	text, err := keys.OpenEnvelope(&keys.Sealed{
		EphPubB64: env.EphPubB64,
		NonceB64:  env.NonceB64,
		CTB64:     env.CTB64,
	}, a.runtime)
	if err != nil {
		log.Printf("Envelope could not be opened: %s", err.Error())
		return
	}

	fmt.Printf("[%s] %s\n", env.TSServer.Local().Format(time.RFC822), string(text))
}
