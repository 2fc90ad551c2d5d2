package models

import "encoding/json"

// InboxSummary is a linked external mail account.
type InboxSummary struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	Provider     string `json:"provider"`
	IsPrimary    bool   `json:"isPrimary"`
}

// UnmarshalJSON accepts the inbox id as a JSON number or string; the API
// serializes its database keys as numbers.
func (in *InboxSummary) UnmarshalJSON(b []byte) error {
	type plain InboxSummary
	aux := struct {
		*plain
		ID MessageID `json:"id"`
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	in.ID = aux.ID.String()
	return nil
}

// Profile is the body of GET /api/me.
type Profile struct {
	Identity
	Inboxes []InboxSummary `json:"inboxes"`
}

// LinkResult describes an inbox that was linked through the provider flow.
type LinkResult struct {
	Inbox InboxSummary
}

// CloneInboxes returns a copy of in that callers may modify freely.
func CloneInboxes(in []InboxSummary) []InboxSummary {
	if in == nil {
		return nil
	}
	out := make([]InboxSummary, len(in))
	copy(out, in)
	return out
}
