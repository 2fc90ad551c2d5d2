package models

import "github.com/google/uuid"

// AssistantState is the lifecycle of the assistant panel.
type AssistantState string

const (
	AssistantIdle       AssistantState = "idle"
	AssistantRequesting AssistantState = "requesting"
	AssistantRevealing  AssistantState = "revealing"
	AssistantErrored    AssistantState = "errored"
)

// AssistantExchange is one prompt and its reply. RevealedPrefixLength counts
// runes of RawReply that have been shown so far.
type AssistantExchange struct {
	ID                   uuid.UUID
	Prompt               string
	RawReply             string
	RevealedPrefixLength int
}

// Revealed returns the part of the reply shown so far.
func (e AssistantExchange) Revealed() string {
	r := []rune(e.RawReply)
	n := e.RevealedPrefixLength
	if n > len(r) {
		n = len(r)
	}
	return string(r[:n])
}

// Complete reports whether the whole reply has been revealed.
func (e AssistantExchange) Complete() bool {
	return e.RevealedPrefixLength >= len([]rune(e.RawReply))
}
