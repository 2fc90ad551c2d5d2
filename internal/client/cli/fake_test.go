package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/sentineliq/internal/client/client"
	"github.com/dmitrijs2005/sentineliq/internal/client/config"
	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/common"
	"github.com/dmitrijs2005/sentineliq/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements client.Client with canned data and records what the
// CLI sent.
type fakeAPI struct {
	mu sync.Mutex

	authenticated bool
	username      string

	loginErr   error
	lastLogin  models.Credentials
	logoutErr  error
	signupMsg  string
	lastSignup *models.SignupForm

	profile  models.Profile
	messages map[string][]models.MessageSummary
	details  map[models.MessageID]models.MessageDetail

	// expireOn lists inboxes whose next listing ends the session with a 401.
	expireOn       map[string]bool
	onUnauthorized func(ctx context.Context)

	reply      string
	promptErr  error
	lastPrompt [2]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		profile: models.Profile{
			Identity: models.Identity{Username: "alice", Name: "Alice"},
			Inboxes: []models.InboxSummary{
				{ID: "in-1", DisplayName: "Work", EmailAddress: "alice@work.test", Provider: "Gmail"},
				{ID: "in-2", DisplayName: "Home", EmailAddress: "alice@home.test", Provider: "Gmail", IsPrimary: true},
			},
		},
		messages: map[string][]models.MessageSummary{
			"in-1": {{ID: "w1", Sender: "boss@work.test", Subject: "Standup", TrustScore: 95, Intent: "Work"}},
			"in-2": {
				{ID: "m1", Sender: "news@shop.test", Subject: "Weekly deals", TrustScore: 80, Intent: models.IntentPromotional},
				{ID: "m2", Sender: "security@bank.test", Subject: "Verify your account", TrustScore: 20, Intent: models.IntentPhishing},
			},
		},
		details: map[models.MessageID]models.MessageDetail{
			"m2": {
				MessageSummary: models.MessageSummary{ID: "m2", Sender: "security@bank.test", Subject: "Verify your account", TrustScore: 20, Intent: models.IntentPhishing},
				Date:           "2024-05-01T10:00:00",
				PlainTextBody:  "Click the link to verify.",
				HTMLBody:       `<p>Click <a href="http://evil.test">here</a></p><script>alert(1)</script>`,
				Recommendation: "Do not click any links.",
				AIInsight:      "Sender domain does not match the bank.",
			},
		},
		reply: "Looks like phishing.",
	}
}

func (f *fakeAPI) Close() error { return nil }

func (f *fakeAPI) Check(context.Context) (*client.SessionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.authenticated {
		return nil, fmt.Errorf("GET /api/auth/check: %w", common.ErrAuthRequired)
	}
	return &client.SessionInfo{Username: f.username}, nil
}

func (f *fakeAPI) Login(_ context.Context, creds models.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLogin = creds
	if f.loginErr != nil {
		return f.loginErr
	}
	f.authenticated = true
	f.username = creds.Username
	return nil
}

func (f *fakeAPI) Signup(_ context.Context, form models.SignupForm) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSignup = &form
	return f.signupMsg, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authenticated = false
	return f.logoutErr
}

func (f *fakeAPI) Me(context.Context) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.authenticated {
		return nil, fmt.Errorf("GET /api/me: %w", common.ErrAuthRequired)
	}
	p := f.profile
	p.Inboxes = models.CloneInboxes(f.profile.Inboxes)
	return &p, nil
}

func (f *fakeAPI) OnUnauthorized(fn func(ctx context.Context)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onUnauthorized = fn
}

func (f *fakeAPI) Messages(ctx context.Context, _ string, inboxID string) ([]models.MessageSummary, error) {
	f.mu.Lock()
	if f.expireOn[inboxID] {
		delete(f.expireOn, inboxID)
		f.authenticated = false
		hook := f.onUnauthorized
		f.mu.Unlock()
		if hook != nil {
			hook(ctx)
		}
		return nil, fmt.Errorf("GET /api/gmail/emails: %w", common.ErrAuthRequired)
	}
	defer f.mu.Unlock()
	return append([]models.MessageSummary{}, f.messages[inboxID]...), nil
}

func (f *fakeAPI) MessageDetail(_ context.Context, _ string, id models.MessageID) (*models.MessageDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.details[id]
	if !ok {
		return nil, fmt.Errorf("GET /api/gmail/emails/%s: %w", id, common.ErrNotFound)
	}
	return &d, nil
}

func (f *fakeAPI) Prompt(_ context.Context, prompt, emailBody string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPrompt = [2]string{prompt, emailBody}
	return f.reply, f.promptErr
}

func (f *fakeAPI) LinkURL(provider string) string {
	return "http://api.test/auth/" + strings.ToLower(provider)
}

// syncBuffer is written by the reveal goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestApp(t *testing.T, api client.Client, input string) (*App, *syncBuffer) {
	t.Helper()

	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.RevealInterval = 0
	cfg.HistoryLimit = 10

	out := &syncBuffer{}
	a := newApp(cfg, logging.NewNop(), api, db, bufio.NewReader(strings.NewReader(input)), out)
	t.Cleanup(a.close)
	return a, out
}

// stubLogin answers the login prompts with username and password.
func stubLogin(t *testing.T, username, password string) {
	t.Helper()
	origText, origPw := getTextWithDefault, getPassword
	getTextWithDefault = func(_ *bufio.Reader, _ string, def string, _ io.Writer) (string, error) {
		if username == "" {
			return def, nil
		}
		return username, nil
	}
	getPassword = func(string, io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getTextWithDefault = origText
		getPassword = origPw
	})
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}
