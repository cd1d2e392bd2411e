package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/sealpost/internal/client/api"
	"github.com/dmitrijs2005/sealpost/internal/client/keys"
)

// Send prompts for a recipient and a message, seals the message to the
// recipient's messaging key and submits the envelope. The relay never sees
// the plaintext.
func (a *App) Send(ctx context.Context) error {
	rcptEmail, err := getSimpleText(a.reader, "Enter recipient email", os.Stdout)
	if err != nil {
		return err
	}

	contact, ok := a.contacts[rcptEmail]
	if !ok {
		// refresh the contact cache once before giving up
		if err := a.Users(ctx); err != nil {
			return err
		}
		if contact, ok = a.contacts[rcptEmail]; !ok {
			log.Printf("Unknown recipient: %s", rcptEmail)
			return fmt.Errorf("unknown recipient %q", rcptEmail)
		}
	}

	text, err := GetMultiline(a.reader, "Enter message", os.Stdout)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Println("Nothing to send.")
		return nil
	}

	sealed, err := keys.SealEnvelope([]byte(text), contact.EncPubB64)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	env := api.Envelope{
		V:         1,
		RcptID:    contact.RcptID,
		TSClient:  time.Now().UTC(),
		EphPubB64: sealed.EphPubB64,
		NonceB64:  sealed.NonceB64,
		CTB64:     sealed.CTB64,
	}

	if err := a.api.Send(ctx, env); err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Println("Accepted for relay.")
	return nil
}
