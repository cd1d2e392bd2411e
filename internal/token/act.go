package token

// Act values recognized by the relay. Where two forms are listed the
// endpoint accepts either.
const (
	ActLogin     = "login"
	ActSend      = "send"
	ActSendAlt   = "messages.send"
	ActFetch     = "fetch"
	ActFetchAlt  = "inbox.fetch"
	ActWSOpen    = "ws.open"
	ActInboxOpen = "inbox.open"
)
