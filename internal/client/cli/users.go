package cli

import (
	"context"
	"fmt"
	"log"
)

// Users lists registered participants and refreshes the local contact
// cache used by Send to resolve recipients.
func (a *App) Users(ctx context.Context) error {
	users, err := a.api.Users(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	for _, u := range users {
		a.contacts[u.Email] = u
		marker := ""
		if u.Email == a.email {
			marker = " (you)"
		}
		fmt.Printf("%s%s  rcpt=%s\n", u.Email, marker, u.RcptID)
	}
	return nil
}
