package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/sentineliq/internal/client/client"
	"github.com/dmitrijs2005/sentineliq/internal/client/config"
	"github.com/dmitrijs2005/sentineliq/internal/client/services"
	"github.com/dmitrijs2005/sentineliq/internal/common"
	"github.com/dmitrijs2005/sentineliq/internal/filex"
	"github.com/dmitrijs2005/sentineliq/internal/logging"
)

// App wires configuration, the API client, local storage and the
// controllers behind the REPL.
type App struct {
	config    *config.Config
	log       logging.Logger
	api       client.Client
	db        *sql.DB
	repos     *client.Repositories
	sessions  *services.SessionStore
	gate      *services.Gate
	inbox     *services.InboxController
	message   *services.MessageController
	assistant *services.AssistantController
	links     *services.LinkService
	reader    *bufio.Reader
	out       io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, err := logging.New(os.Stderr, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	dbPath, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "err", err)
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, log, apiClient, db, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, log logging.Logger, api client.Client, db *sql.DB, in *bufio.Reader, out io.Writer) *App {
	sessions := services.NewSessionStore(api, log)
	a := &App{
		config:   c,
		log:      log,
		api:      api,
		db:       db,
		repos:    client.NewRepositories(db),
		sessions: sessions,
		gate:     services.NewGate(sessions),
		inbox:    services.NewInboxController(api, log),
		message:  services.NewMessageController(api, log),
		links:    services.NewLinkService(api),
		reader:   in,
		out:      out,
	}
	a.assistant = a.newAssistant()
	if n, ok := api.(client.UnauthorizedNotifier); ok {
		n.OnUnauthorized(sessions.HandleUnauthorized)
	}
	return a
}

func (a *App) newAssistant() *services.AssistantController {
	return services.NewAssistantController(a.api, a.log,
		services.WithRevealInterval(a.config.RevealInterval),
		services.WithHistory(a.repos.History, a.config.HistoryLimit),
		services.OnReveal(func(chunk string) { fmt.Fprint(a.out, chunk) }),
	)
}

// resetViews drops everything tied to the previous session.
func (a *App) resetViews() {
	a.assistant.Close()
	a.assistant = a.newAssistant()
	a.inbox = services.NewInboxController(a.api, a.log)
	a.message.Reset()
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Snapshot().Authenticated
}

// resume sends the user back through login when err shows that the session
// ended while a command ran. Any other error is returned as is.
func (a *App) resume(ctx context.Context, err error) error {
	if common.KindOf(err) != common.KindAuthRequired || a.isLoggedIn() {
		return err
	}
	a.log.Debug(ctx, "session ended during command", "err", err)
	fmt.Fprintln(a.out, "Your session has ended. Please log in again.")
	return a.login(ctx)
}

// Run starts the REPL and blocks until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) {
	defer a.close()
	a.Root(ctx)
}

func (a *App) close() {
	a.assistant.Close()
	if err := a.api.Close(); err != nil {
		a.log.Warn(context.Background(), "closing api client", "err", err)
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "closing database", "err", err)
	}
}
