// Package controller implements the view controller: it gates access on
// the stored session, owns the visible module, and dispatches the data
// refresh bound to each module activation.
package controller

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/krishichetan/kchetan/internal/client/api"
	"github.com/krishichetan/kchetan/internal/client/storage"
	"github.com/krishichetan/kchetan/internal/i18n"
	"github.com/krishichetan/kchetan/internal/models"
	"github.com/krishichetan/kchetan/internal/view"
)

var (
	// ErrUnauthenticated means there is no valid session. Callers send the
	// user to RedirectLogin.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrUnsupportedLanguage is returned by SetLanguage for unknown codes.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// RedirectLogin is the unauthenticated entry point.
const RedirectLogin = "login"

// DefaultLocation is the weather location used for the dashboard.
const DefaultLocation = "Satara"

// SessionStore persists the session between runs.
type SessionStore interface {
	// Load returns the stored session or storage.ErrNoSession.
	Load(ctx context.Context) (*models.Session, error)
	// Save replaces the stored session.
	Save(ctx context.Context, s models.Session) error
	// Clear removes all persisted session state.
	Clear(ctx context.Context) error
}

// Painter receives view models. Implementations must not call back into
// the controller.
type Painter interface {
	// SetVisible shows exactly module m.
	SetVisible(m models.Module)
	// SetNav replaces the navigation bar.
	SetNav(items []view.NavItem)
	// SetLabels replaces every static label.
	SetLabels(labels map[string]string)
	// SetVoiceTag sets the speech-recognition locale.
	SetVoiceTag(tag string)
	// Paint replaces the content of region r.
	Paint(r view.Region, p view.Panel)
	// Clear empties region r.
	Clear(r view.Region)
	// Reset drops all state, as after logout.
	Reset()
}

// activation is the context of one module activation. Everything a
// refresh needs is copied in, so a refresh never reads controller state.
type activation struct {
	ctx     context.Context
	cancel  context.CancelFunc
	gen     uint64
	epoch   uint64
	module  models.Module
	lang    models.Language
	session models.Session
}

// Controller is the view controller.
type Controller struct {
	client   *api.Client
	store    SessionStore
	painter  Painter
	catalog  *i18n.Catalog
	log      *zap.Logger
	location string
	now      func() time.Time

	root context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu         sync.Mutex
	session    *models.Session
	active     models.Module
	lang       models.Language
	labels     map[string]string
	gen        uint64
	epoch      uint64
	current    *activation
	transcript view.Transcript
}

// Option customizes a Controller.
type Option func(*Controller)

// WithCatalog sets the translation catalog. The embedded one is used
// otherwise.
func WithCatalog(c *i18n.Catalog) Option {
	return func(ctl *Controller) { ctl.catalog = c }
}

// WithLanguage sets the starting language. Unknown codes fall back to
// the default.
func WithLanguage(lang string) Option {
	return func(ctl *Controller) { ctl.lang = models.LanguageOrDefault(lang) }
}

// WithLocation sets the weather location.
func WithLocation(loc string) Option {
	return func(ctl *Controller) {
		if loc != "" {
			ctl.location = loc
		}
	}
}

// WithClock overrides time.Now for session validity checks.
func WithClock(now func() time.Time) Option {
	return func(ctl *Controller) { ctl.now = now }
}

// New creates a Controller. log may be nil.
func New(client *api.Client, store SessionStore, painter Painter, log *zap.Logger, opts ...Option) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		client:   client,
		store:    store,
		painter:  painter,
		log:      log.Named("controller"),
		location: DefaultLocation,
		now:      time.Now,
		lang:     models.DefaultLanguage,
	}
	for _, o := range opts {
		o(c)
	}
	if c.catalog == nil {
		c.catalog = i18n.Default()
	}
	c.labels = c.catalog.Apply(c.lang, c.catalog.Labels())
	c.root, c.stop = context.WithCancel(context.Background())
	return c
}

// Initialize loads the session and selects the initial module from the
// role. Without a valid session it returns ErrUnauthenticated and does
// nothing else.
func (c *Controller) Initialize(ctx context.Context) error {
	s, err := c.store.Load(ctx)
	if err != nil && !errors.Is(err, storage.ErrNoSession) {
		c.log.Warn("failed to load session", zap.Error(err))
	}
	if err != nil || !storage.Valid(s, c.now()) {
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		return ErrUnauthenticated
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	c.painter.SetLabels(maps.Clone(c.labels))
	c.painter.SetVoiceTag(i18n.VoiceTag(c.lang).String())
	c.activateLocked(view.InitialModule(s.Role))
	c.log.Info("session started",
		zap.String("role", string(s.Role)),
		zap.String("module", string(c.active)))
	return nil
}

// ActivateModule makes module id the only visible module and dispatches
// its refresh. Unknown ids are ignored.
func (c *Controller) ActivateModule(id string) error {
	m, ok := models.ParseModule(id)
	if !ok {
		c.log.Debug("ignoring unknown module", zap.String("module", id))
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ErrUnauthenticated
	}
	c.activateLocked(m)
	return nil
}

// RefreshActive re-issues the visible module's refresh in the current
// language.
func (c *Controller) RefreshActive() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ErrUnauthenticated
	}
	c.activateLocked(c.active)
	return nil
}

// SetLanguage switches the language, re-renders labels and refreshes the
// visible module. Labels without a translation keep their previous text.
func (c *Controller) SetLanguage(code string) error {
	lang, ok := models.ParseLanguage(code)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lang = lang
	c.labels = c.catalog.Apply(lang, c.labels)
	c.painter.SetLabels(maps.Clone(c.labels))
	c.painter.SetVoiceTag(i18n.VoiceTag(lang).String())
	if c.session == nil {
		return nil
	}
	c.activateLocked(c.active)
	return nil
}

// activateLocked shows m, cancels the previous activation and dispatches
// m's refresh under a new generation. c.mu must be held.
func (c *Controller) activateLocked(m models.Module) {
	if c.current != nil {
		c.current.cancel()
	}
	c.gen++
	ctx, cancel := context.WithCancel(c.root)
	a := &activation{
		ctx:     ctx,
		cancel:  cancel,
		gen:     c.gen,
		epoch:   c.epoch,
		module:  m,
		lang:    c.lang,
		session: *c.session,
	}
	c.current = a
	c.active = m
	c.painter.SetVisible(m)
	c.painter.SetNav(view.Navigation(c.session.Role, m))

	if fn := c.refreshFor(m, a.session.Role); fn != nil {
		c.dispatch(a, fn)
	}
}

func (c *Controller) dispatch(a *activation, fn func(*activation)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(a)
	}()
}

// paint applies p unless a has been superseded.
func (c *Controller) paint(a *activation, r view.Region, p view.Panel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a.gen != c.gen {
		c.log.Debug("discarding stale paint",
			zap.String("region", string(r)),
			zap.Uint64("gen", a.gen),
			zap.Uint64("current", c.gen))
		return
	}
	c.painter.Paint(r, p)
}

// liveLocked reports whether the session a was started under is still
// logged in. Module switches keep it live; logout ends it. c.mu must be
// held.
func (c *Controller) liveLocked(a *activation) bool {
	return c.session != nil && a.epoch == c.epoch
}

func (c *Controller) clear(a *activation, r view.Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a.gen == c.gen {
		c.painter.Clear(r)
	}
}

// fail logs a refresh failure. Cancellation by a newer activation is
// expected and logged at debug level.
func (c *Controller) fail(a *activation, r view.Region, err error) {
	if errors.Is(err, context.Canceled) || a.ctx.Err() != nil {
		c.log.Debug("refresh cancelled", zap.String("region", string(r)), zap.Error(err))
		return
	}
	c.log.Warn("refresh failed",
		zap.String("module", string(a.module)),
		zap.String("region", string(r)),
		zap.String("lang", string(a.lang)),
		zap.Error(err))
}

// backend returns the API client authenticated as a's session.
func (c *Controller) backend(a *activation) *api.Client {
	return c.client.WithToken(a.session.Token)
}

// Wait blocks until every dispatched refresh has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight refreshes and waits for them.
func (c *Controller) Close() {
	c.stop()
	c.Wait()
}

// Active returns the visible module.
func (c *Controller) Active() models.Module {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Language returns the current language.
func (c *Controller) Language() models.Language {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lang
}

// Session returns a copy of the current session.
func (c *Controller) Session() (models.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return models.Session{}, false
	}
	return *c.session, true
}

// Login exchanges credentials for a token, stores the session and
// initializes the controller with it.
func (c *Controller) Login(ctx context.Context, phone, password string) (models.Session, error) {
	res, err := c.client.Login(ctx, phone, password)
	if err != nil {
		return models.Session{}, fmt.Errorf("login: %w", err)
	}
	s := storage.FromLogin(phone, res, c.now())
	if err := c.store.Save(ctx, s); err != nil {
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}
	if err := c.Initialize(ctx); err != nil {
		return models.Session{}, err
	}
	return s, nil
}

// Register creates an account. It does not log in.
func (c *Controller) Register(ctx context.Context, reg models.Registration) error {
	if err := c.client.Register(ctx, reg); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout clears all persisted session state and the screen. Later
// operations report ErrUnauthenticated.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	if c.current != nil {
		c.current.cancel()
		c.current = nil
	}
	c.gen++
	c.epoch++
	c.session = nil
	c.transcript = view.Transcript{}
	c.painter.Reset()
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.log.Info("logged out")
	return nil
}

func (c *Controller) requireSession() (*activation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.current == nil {
		return nil, ErrUnauthenticated
	}
	return c.current, nil
}
