package models

import "time"

// PromptRecord is one assistant prompt kept in the local history. Only the
// prompt text is stored, never the message it was asked about.
type PromptRecord struct {
	ID        int64
	Prompt    string
	CreatedAt time.Time
}
