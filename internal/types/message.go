package types

import "time"

// CommonMessageData is a message placed in a citizen's inbox.
type CommonMessageData struct {
	Subject           string
	Body              string
	ActionPerspective string
	PublicationDate   time.Time
	Identification    Identification
}
