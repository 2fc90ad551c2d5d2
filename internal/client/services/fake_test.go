package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sentineliq/internal/client/client"
	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/common"
	"github.com/stretchr/testify/require"
)

var errNotFoundForTest = fmt.Errorf("GET /api/gmail/emails/x: %w", common.ErrNotFound)

// fakeClient implements client.Client. A gate, when set, blocks the matching
// call until it is closed; started receives a key when such a call begins.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	checkInfo *client.SessionInfo
	checkErr  error
	checkGate chan struct{}

	loginErr   error
	lastLogin  models.Credentials
	logoutErr  error
	signupMsg  string
	signupErr  error
	lastSignup models.SignupForm

	profile *models.Profile
	meErr   error

	messages    map[string][]models.MessageSummary
	messagesErr map[string]error

	details    map[models.MessageID]*models.MessageDetail
	detailsErr map[models.MessageID]error

	replies    map[string]string
	promptErr  error
	lastPrompt [2]string

	gates   map[string]chan struct{}
	started chan string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		messages:    map[string][]models.MessageSummary{},
		messagesErr: map[string]error{},
		details:     map[models.MessageID]*models.MessageDetail{},
		detailsErr:  map[models.MessageID]error{},
		replies:     map[string]string{},
		gates:       map[string]chan struct{}{},
		started:     make(chan string, 16),
	}
}

// block makes the call identified by key wait until the returned func runs.
func (f *fakeClient) block(key string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = ch
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeClient) enter(key string) {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	gate := f.gates[key]
	f.mu.Unlock()

	if gate != nil {
		f.started <- key
		<-gate
	}
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeClient) count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeClient) set(fn func(f *fakeClient)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Check(ctx context.Context) (*client.SessionInfo, error) {
	f.enter("check")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checkInfo, f.checkErr
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) error {
	f.enter("login")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLogin = creds
	return f.loginErr
}

func (f *fakeClient) Signup(ctx context.Context, form models.SignupForm) (string, error) {
	f.enter("signup")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSignup = form
	return f.signupMsg, f.signupErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.enter("logout")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logoutErr
}

func (f *fakeClient) Me(ctx context.Context) (*models.Profile, error) {
	f.enter("me")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	p := *f.profile
	p.Inboxes = models.CloneInboxes(f.profile.Inboxes)
	return &p, nil
}

func (f *fakeClient) Messages(ctx context.Context, provider, inboxID string) ([]models.MessageSummary, error) {
	f.enter("messages:" + inboxID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.messagesErr[inboxID]; err != nil {
		return nil, err
	}
	return append([]models.MessageSummary{}, f.messages[inboxID]...), nil
}

func (f *fakeClient) MessageDetail(ctx context.Context, provider string, id models.MessageID) (*models.MessageDetail, error) {
	f.enter("detail:" + id.String())
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.detailsErr[id]; err != nil {
		return nil, err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, errNotFoundForTest
	}
	out := *d
	return &out, nil
}

func (f *fakeClient) Prompt(ctx context.Context, prompt, emailBody string) (string, error) {
	f.enter("prompt:" + prompt)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPrompt = [2]string{prompt, emailBody}
	if f.promptErr != nil {
		return "", f.promptErr
	}
	return f.replies[prompt], nil
}

func (f *fakeClient) LinkURL(provider string) string {
	return "http://api.test/auth/" + strings.ToLower(provider)
}

// waitStarted waits until a gated call with key has begun.
func waitStarted(t *testing.T, f *fakeClient, key string) {
	t.Helper()
	select {
	case got := <-f.started:
		require.Equal(t, key, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("call %q did not start", key)
	}
}
