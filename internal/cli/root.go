package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/daoban/internal/apiclient"
	"github.com/alexanderramin/daoban/internal/domain"
	"github.com/alexanderramin/daoban/internal/repository"
	"github.com/alexanderramin/daoban/internal/rotation"
)

// Store is the state owner the commands drive.
type Store interface {
	Session() domain.Session
	Snapshot() domain.Document
	CurrentShift(day time.Time) rotation.Shift
	EffectiveSalary(month string) domain.SalarySettings

	Login(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	Register(ctx context.Context, reg domain.Registration) error
	Logout(ctx context.Context) error
	LoadUserData(ctx context.Context) (domain.Document, error)
	Flush(ctx context.Context) error
	CacheEntries(ctx context.Context) ([]repository.CacheEntry, error)

	UpdateSettings(p domain.RotationPatch) bool
	MarkDate(date time.Time, t domain.MarkType) bool
	UpdateMonthlySalarySettings(u domain.MonthlyUpdate) bool
	UpdateSalarySettings(fields domain.SalarySettings) bool
}

// Replayer re-issues a failed request.
type Replayer interface {
	Replay(ctx context.Context, desc apiclient.RequestDescriptor) (*apiclient.Response, error)
}

// App holds what CLI commands need to run.
type App struct {
	Store    Store
	Replayer Replayer

	// IsInteractive reports whether prompts may be shown. Nil means never.
	IsInteractive func() bool
	// Now is the clock for "today". Nil means time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) today() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// replay retries a failed request. A failed document load is retried
// through the store so the response lands in local state.
func (a *App) replay(ctx context.Context, desc apiclient.RequestDescriptor) error {
	if desc.Method == http.MethodGet && desc.Path == userDataPath {
		_, err := a.Store.LoadUserData(ctx)
		return err
	}
	if a.Replayer == nil {
		return nil
	}
	_, err := a.Replayer.Replay(ctx, desc)
	return err
}

const userDataPath = "/user/data"

// NewRootCmd creates the top-level "daoban" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "daoban",
		Short:         "Shift rotation calendar and salary tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newSyncCmd(app),
		newTodayCmd(app),
		newCalendarCmd(app),
		newMarkCmd(app),
		newRotationCmd(app),
		newSalaryCmd(app),
		newCacheCmd(app),
	)

	return root
}

// Execute runs the command line in args. Retryable failures reported
// while it ran are offered for replay afterwards; if one is replayed
// successfully the command's own error is dropped.
func Execute(ctx context.Context, app *App, n *Notifier, args []string) error {
	root := NewRootCmd(app)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	replayed, retryErr := n.OfferRetries(ctx, app)
	if retryErr != nil {
		return retryErr
	}
	if err != nil && replayed > 0 {
		return nil
	}
	return err
}

// flush pushes any pending save before the process exits.
func flush(ctx context.Context, app *App) error {
	if !app.Store.Session().IsAuthenticated() {
		return nil
	}
	return app.Store.Flush(ctx)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
