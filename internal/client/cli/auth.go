package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/sealpost/internal/client/api"
	"github.com/dmitrijs2005/sealpost/internal/client/keys"
	"github.com/dmitrijs2005/sealpost/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register creates an account. Two key hierarchies are derived: the
// deterministic one from email and password, and a random messaging one
// whose master secret is sealed to the deterministic encryption key and
// stored on the server. The relay only ever sees public keys and the
// sealed master.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	det, err := keys.DeriveDeterministic(email, password)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	master, runtime, err := keys.DeriveRandom()
	if err != nil {
		log.Println(err.Error())
		return err
	}
	defer common.WipeByteArray(master)

	sealed, err := keys.SealMaster(master, det.EncPub)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	user, err := a.api.Register(ctx, registerRequest(email, det, runtime, sealed))
	if err != nil {
		log.Println(err.Error())
		return err
	}

	a.api.SetIdentity(email, det.SignPriv)
	a.email = email
	a.rcptID = user.RcptID
	a.det = det
	a.runtime = runtime

	fmt.Println("Success! Your recipient handle is", user.RcptID)
	return nil
}

// Login re-derives the deterministic keys from the credentials, fetches
// the identity record and unseals the messaging master. A wrong password
// fails either at the server (bad token signature) or at the unseal step.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	det, err := keys.DeriveDeterministic(email, password)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	a.api.SetIdentity(email, det.SignPriv)

	rec, err := a.api.Login(ctx)
	if err != nil {
		a.api.ClearIdentity()
		log.Printf("Login unsuccessfull: %s", err.Error())
		return err
	}

	master, err := keys.OpenMaster(rec.SealedMaster, det)
	if err != nil {
		a.api.ClearIdentity()
		log.Printf("Login unsuccessfull: %s", err.Error())
		return err
	}
	defer common.WipeByteArray(master)

	runtime, err := keys.RuntimeFromMaster(master)
	if err != nil {
		a.api.ClearIdentity()
		log.Println(err.Error())
		return err
	}

	a.email = email
	a.rcptID = rec.RcptID
	a.det = det
	a.runtime = runtime

	log.Printf("Login successfull")
	return nil
}

// Logout drops the session keys from memory.
func (a *App) Logout(ctx context.Context) error {
	a.api.ClearIdentity()
	a.email = ""
	a.rcptID = ""
	a.det = nil
	a.runtime = nil
	a.contacts = make(map[string]api.User)
	return nil
}

func registerRequest(email string, det, runtime *keys.KeySet, sealedMaster string) api.RegisterRequest {
	return api.RegisterRequest{
		Email:        email,
		SignPubB64:   keys.EncodeB64(det.SignPub),
		EncPubB64:    keys.EncodeB64(runtime.EncPub[:]),
		SealedMaster: sealedMaster,
	}
}
