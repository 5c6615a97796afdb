package server

import "github.com/google/uuid"

// SessionID is the session's freshly generated 128-bit unique identifier,
// assigned once on accept and never reused.
type SessionID = uuid.UUID

func newSessionID() SessionID {
	return uuid.New()
}
