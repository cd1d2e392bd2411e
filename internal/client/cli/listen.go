package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/dmitrijs2005/sealpost/internal/client/api"
)

// Listen opens the realtime channel and prints messages as they arrive.
// Pressing Enter stops listening and returns to the prompt.
func (a *App) Listen(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Println("Listening for messages (press Enter to stop)...")

	go func() {
		_, _ = a.reader.ReadString('\n')
		cancel()
	}()

	err := a.api.Listen(ctx, a.rcptID, func(f api.Frame) {
		switch f.Type {
		case "inbox.init":
			var envs []api.Envelope
			if err := json.Unmarshal(f.Data, &envs); err != nil {
				log.Println(err.Error())
				return
			}
			for _, env := range envs {
				a.printEnvelope(env)
			}
		case "envelope":
			var env api.Envelope
			if err := json.Unmarshal(f.Data, &env); err != nil {
				log.Println(err.Error())
				return
			}
			a.printEnvelope(env)
		}
	})
	if err != nil {
		log.Println(err.Error())
		return err
	}
	return nil
}
