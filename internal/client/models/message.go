package models

import (
	"encoding/json"
	"strconv"
)

// Intent labels attached by the analysis service. The set is open-ended;
// these are the ones the client treats specially.
const (
	IntentPhishing    = "Phishing"
	IntentPromotional = "Promotional"
	IntentUnknown     = "Unknown"
)

// TrustLevel buckets a 0..100 trust score for display.
type TrustLevel string

const (
	TrustHigh   TrustLevel = "high"
	TrustMedium TrustLevel = "medium"
	TrustLow    TrustLevel = "low"
)

// MessageID is a server-issued message identifier. The API sends numeric ids;
// they are kept in string form so that provider ids also fit.
type MessageID string

func (id *MessageID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = MessageID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*id = MessageID(s)
	return nil
}

func (id MessageID) String() string { return string(id) }

// MessageSummary is one row of an inbox listing.
type MessageSummary struct {
	ID         MessageID `json:"id"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	TrustScore int       `json:"trustScore"`
	Intent     string    `json:"intent"`
	Spam       bool      `json:"spam"`
}

func (m MessageSummary) TrustLevel() TrustLevel {
	return TrustLevelOf(m.TrustScore)
}

// IsDangerous is the verdict shown next to a message.
func (m MessageSummary) IsDangerous() bool {
	return m.TrustScore < 50 || m.Intent == IntentPhishing || m.Spam
}

// IsTrusted is used for the dashboard's trusted/flagged split.
func (m MessageSummary) IsTrusted() bool {
	return m.TrustScore > 50
}

// MessageDetail is the full view of a single message.
type MessageDetail struct {
	MessageSummary
	// Date is shown as sent; the API does not use one fixed layout.
	Date           string `json:"date"`
	PlainTextBody  string `json:"plainTextBody"`
	HTMLBody       string `json:"htmlBody,omitempty"`
	Recommendation string `json:"recommendation"`
	AIInsight      string `json:"aiInsight"`
}

// ContextBody is the text handed to the assistant as message context.
func (d MessageDetail) ContextBody() string {
	return d.PlainTextBody
}

// TrustLevelOf buckets score: above 70 is high, above 40 medium, the rest low.
func TrustLevelOf(score int) TrustLevel {
	switch {
	case score > 70:
		return TrustHigh
	case score > 40:
		return TrustMedium
	default:
		return TrustLow
	}
}

// InboxStats is the dashboard summary for one message list.
type InboxStats struct {
	Total   int
	Trusted int
	Flagged int
	Spam    int
}

func StatsOf(messages []MessageSummary) InboxStats {
	s := InboxStats{Total: len(messages)}
	for _, m := range messages {
		if m.IsTrusted() {
			s.Trusted++
		} else {
			s.Flagged++
		}
		if m.Spam {
			s.Spam++
		}
	}
	return s
}

// ParseMessageID validates a user or URL supplied identifier.
func ParseMessageID(s string) (MessageID, bool) {
	if !validToken(s) {
		return "", false
	}
	return MessageID(s), true
}

// ValidProvider reports whether s can name a provider in an API path.
func ValidProvider(s string) bool {
	return validToken(s)
}

// validToken accepts 1 to 128 letters, digits, '-' and '_'.
func validToken(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// FormatScore renders a trust score as shown in listings, e.g. "87%".
func FormatScore(score int) string {
	return strconv.Itoa(score) + "%"
}
