package form

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/edesteves10/contrat-cond/internal/logging"
	"github.com/edesteves10/contrat-cond/pkg/debounce"
	"github.com/edesteves10/contrat-cond/pkg/endpoints"
	"github.com/edesteves10/contrat-cond/pkg/export"
	"github.com/edesteves10/contrat-cond/pkg/format"
	"github.com/edesteves10/contrat-cond/pkg/lookup"
	"github.com/edesteves10/contrat-cond/pkg/mask"
	"github.com/edesteves10/contrat-cond/pkg/model"
	"github.com/edesteves10/contrat-cond/pkg/prefs"
	"github.com/edesteves10/contrat-cond/pkg/preview"
)

const settlePoll = 10 * time.Millisecond

// Listener receives the view after every state change.
type Listener func(View)

// Controller serialises every operation on a FormState.
type Controller struct {
	mu    sync.Mutex
	state FormState

	cnpj     lookup.CNPJService
	cep      lookup.CEPService
	renderer *preview.Renderer
	exporter *export.PDF
	catalog  *endpoints.Catalog
	store    *prefs.Store
	theme    *prefs.Theme
	logger   logging.Logger

	delay      time.Duration
	clock      debounce.Clock
	debouncers map[mask.Kind]*debounce.Debouncer
	inflight   map[mask.Kind]context.CancelFunc
	generation map[mask.Kind]uint64
	fetches    sync.WaitGroup

	listeners []Listener

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLookupClient uses client for both CNPJ and CEP lookups.
func WithLookupClient(client *lookup.Client) Option {
	return func(c *Controller) {
		if client != nil {
			c.cnpj = client
			c.cep = client
		}
	}
}

// WithCNPJService overrides the CNPJ lookup.
func WithCNPJService(service lookup.CNPJService) Option {
	return func(c *Controller) {
		if service != nil {
			c.cnpj = service
		}
	}
}

// WithCEPService overrides the CEP lookup.
func WithCEPService(service lookup.CEPService) Option {
	return func(c *Controller) {
		if service != nil {
			c.cep = service
		}
	}
}

// WithDelay sets the quiet period before a lookup fires.
func WithDelay(delay time.Duration) Option {
	return func(c *Controller) {
		if delay > 0 {
			c.delay = delay
		}
	}
}

// WithClock replaces the timer source used for debouncing.
func WithClock(clock debounce.Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithRenderer sets the preview renderer.
func WithRenderer(renderer *preview.Renderer) Option {
	return func(c *Controller) {
		if renderer != nil {
			c.renderer = renderer
		}
	}
}

// WithExporter sets the PDF exporter.
func WithExporter(exporter *export.PDF) Option {
	return func(c *Controller) {
		if exporter != nil {
			c.exporter = exporter
		}
	}
}

// WithCatalog sets the submission endpoints.
func WithCatalog(catalog *endpoints.Catalog) Option {
	return func(c *Controller) {
		if catalog != nil {
			c.catalog = catalog
		}
	}
}

// WithPreferences persists the high contrast flag in store.
func WithPreferences(store *prefs.Store) Option {
	return func(c *Controller) {
		if store != nil {
			c.store = store
		}
	}
}

// WithTheme sets the theme used to resolve view tokens.
func WithTheme(th *prefs.Theme) Option {
	return func(c *Controller) {
		if th != nil {
			c.theme = th
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithListener registers fn to receive views after each change.
func WithListener(fn Listener) Option {
	return func(c *Controller) {
		if fn != nil {
			c.listeners = append(c.listeners, fn)
		}
	}
}

// NewController builds a controller in Create mode. Collaborators that are not
// supplied get their defaults: the public lookup services, the embedded
// contract templates and endpoint document, A4 export and in-memory
// preferences.
func NewController(ctx context.Context, options ...Option) (*Controller, error) {
	c := &Controller{
		state:      newState(),
		logger:     logging.Nop{},
		delay:      debounce.DefaultDelay,
		clock:      debounce.RealClock(),
		debouncers: make(map[mask.Kind]*debounce.Debouncer),
		inflight:   make(map[mask.Kind]context.CancelFunc),
		generation: make(map[mask.Kind]uint64),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}

	if c.cnpj == nil || c.cep == nil {
		client := lookup.NewClient(lookup.WithLogger(c.logger))
		if c.cnpj == nil {
			c.cnpj = client
		}
		if c.cep == nil {
			c.cep = client
		}
	}
	if c.renderer == nil {
		renderer, err := preview.NewRenderer()
		if err != nil {
			return nil, err
		}
		c.renderer = renderer
	}
	if c.exporter == nil {
		exporter, err := export.NewPDF(export.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		c.exporter = exporter
	}
	if c.catalog == nil {
		catalog, err := endpoints.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.catalog = catalog
	}
	if c.theme == nil {
		th, err := prefs.NewTheme()
		if err != nil {
			return nil, err
		}
		c.theme = th
	}
	if c.store == nil {
		c.store = prefs.NewStore("")
	}

	for _, kind := range []mask.Kind{mask.KindCNPJ, mask.KindCEP} {
		c.debouncers[kind] = debounce.New(c.delay, debounce.WithClock(c.clock))
	}

	target, err := c.catalog.Resolve(model.ModeCreate, "")
	if err != nil {
		return nil, err
	}
	c.state.Target = target

	loaded, err := c.store.Load()
	if err != nil {
		c.logger.Warn("preferences unavailable, using defaults", "path", c.store.Path(), "error", err)
	}
	c.state.HighContrast = loaded.HighContrast

	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c, nil
}

// View returns the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return render(c.snapshotLocked(), c.theme)
}

// Values returns a copy of the current field values.
func (c *Controller) Values() model.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Values.Clone()
}

// Set handles an input event on any field. Masked fields are routed through
// OnInput and the contract value gets the currency input mask.
func (c *Controller) Set(field model.FieldName, raw string) {
	switch field {
	case model.FieldCNPJ:
		c.OnInput(mask.KindCNPJ, raw)
		return
	case model.FieldCEP:
		c.OnInput(mask.KindCEP, raw)
		return
	case model.FieldTelefone:
		c.OnInput(mask.KindPhone, raw)
		return
	case model.FieldValor:
		raw = AmountInput(raw)
	}
	c.update(func(s *FormState) {
		s.Values[field] = raw
	})
}

// OnInput masks raw, stores it in the field of kind and schedules a lookup
// when the digit count reaches the target. Any pending lookup of the same kind
// is cancelled first.
func (c *Controller) OnInput(kind mask.Kind, raw string) {
	masked := mask.Apply(kind, raw)
	digits := mask.Digits(masked)

	c.update(func(s *FormState) {
		s.Values[model.FieldName(kind)] = masked
	})

	d, ok := c.debouncers[kind]
	if !ok {
		return
	}
	if len(digits) != mask.Length(kind) {
		d.Cancel()
		c.update(func(s *FormState) {
			c.dropInflightLocked(kind)
			delete(s.Errors, model.FieldName(kind))
		})
		return
	}
	d.Trigger(func() {
		c.fetch(kind, digits)
	})
	c.logger.Debug("lookup scheduled", "kind", kind, "delay", d.Delay())
}

// Pending reports whether a lookup of kind is waiting for its quiet period.
func (c *Controller) Pending(kind mask.Kind) bool {
	d, ok := c.debouncers[kind]
	return ok && d.Pending()
}

// Wait blocks until lookups already started have been applied or discarded.
func (c *Controller) Wait() {
	c.fetches.Wait()
}

// Settle waits for scheduled lookups to fire and for their results to be
// applied. Front ends that prompt field by field use it so autofilled values
// are visible before the next prompt.
func (c *Controller) Settle(ctx context.Context) error {
	ticker := time.NewTicker(settlePoll)
	defer ticker.Stop()
	for c.busy() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	c.fetches.Wait()
	return nil
}

func (c *Controller) busy() bool {
	for _, d := range c.debouncers {
		if d.Busy() {
			return true
		}
	}
	return false
}

// Close cancels pending and in-flight lookups.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancelLookups()
	c.cancel()
	c.fetches.Wait()
	return nil
}

// fetch starts the lookup for kind. A fetch supersedes any earlier one of the
// same kind: the earlier request is cancelled and its response discarded.
func (c *Controller) fetch(kind mask.Kind, digits string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if cancel := c.inflight[kind]; cancel != nil {
		cancel()
	}
	c.generation[kind]++
	gen := c.generation[kind]
	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight[kind] = cancel
	c.state.Loading[kind] = true
	view := render(c.snapshotLocked(), c.theme)
	c.fetches.Add(1)
	c.mu.Unlock()
	c.publish(view)

	c.logger.InfoCtx(ctx, "lookup fired", "kind", kind, "digits", digits)

	go func() {
		defer c.fetches.Done()
		defer cancel()

		var apply func(*FormState)
		switch kind {
		case mask.KindCNPJ:
			company, err := c.cnpj.LookupCNPJ(ctx, digits)
			apply = c.cnpjResult(ctx, company, err)
		case mask.KindCEP:
			address, err := c.cep.LookupCEP(ctx, digits)
			apply = c.cepResult(ctx, address, err)
		}

		c.mu.Lock()
		if c.generation[kind] != gen {
			c.mu.Unlock()
			c.logger.DebugCtx(ctx, "stale lookup discarded", "kind", kind, "digits", digits)
			return
		}
		delete(c.inflight, kind)
		if apply != nil {
			apply(&c.state)
		}
		c.state.Loading[kind] = false
		view := render(c.snapshotLocked(), c.theme)
		c.mu.Unlock()
		c.publish(view)
	}()
}

func (c *Controller) cnpjResult(ctx context.Context, company lookup.Company, err error) func(*FormState) {
	field := model.FieldCNPJ
	switch {
	case err == nil:
		return func(s *FormState) {
			s.Values[model.FieldNome] = company.DisplayName()
			s.Values[model.FieldEndereco] = company.Address()
			s.Values[model.FieldEstado] = company.State
			s.Values[model.FieldCEP] = mask.CEP(company.CEP)
			delete(s.Errors, field)
		}
	case errors.Is(err, lookup.ErrNotFound):
		message := lookup.ServiceMessage(err)
		if message == "" {
			message = MessageCNPJNotFound
		}
		c.logger.InfoCtx(ctx, "cnpj not found", "message", message)
		return func(s *FormState) {
			s.Values[model.FieldNome] = ""
			s.Errors[field] = message
		}
	default:
		c.logger.WarnCtx(ctx, "cnpj lookup failed", "error", err)
		return func(s *FormState) {
			s.Errors[field] = MessageCNPJUnavailable
		}
	}
}

func (c *Controller) cepResult(ctx context.Context, address lookup.Address, err error) func(*FormState) {
	field := model.FieldCEP
	switch {
	case err == nil:
		return func(s *FormState) {
			s.Values[model.FieldEndereco] = address.Line()
			if state := strings.TrimSpace(address.State); state != "" {
				s.Values[model.FieldEstado] = state
			}
			delete(s.Errors, field)
		}
	case errors.Is(err, lookup.ErrNotFound):
		c.logger.InfoCtx(ctx, "cep not found")
		return func(s *FormState) {
			s.Errors[field] = MessageCEPNotFound
		}
	default:
		c.logger.WarnCtx(ctx, "cep lookup failed", "error", err)
		return func(s *FormState) {
			s.Errors[field] = MessageCEPUnavailable
		}
	}
}

// cancelLookups drops pending timers and in-flight requests of every kind.
func (c *Controller) cancelLookups() {
	for _, d := range c.debouncers {
		d.Cancel()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for kind := range c.inflight {
		c.dropInflightLocked(kind)
	}
}

// dropInflightLocked cancels the request of kind, if any, and invalidates its
// response.
func (c *Controller) dropInflightLocked(kind mask.Kind) {
	if cancel := c.inflight[kind]; cancel != nil {
		cancel()
		delete(c.inflight, kind)
	}
	c.generation[kind]++
	c.state.Loading[kind] = false
}

// update applies fn under the lock and publishes the resulting view.
func (c *Controller) update(fn func(*FormState)) View {
	c.mu.Lock()
	fn(&c.state)
	view := render(c.snapshotLocked(), c.theme)
	c.mu.Unlock()
	c.publish(view)
	return view
}

func (c *Controller) publish(view View) {
	for _, fn := range c.listeners {
		fn(view)
	}
}

// snapshotLocked copies state so views never alias controller maps.
func (c *Controller) snapshotLocked() FormState {
	s := c.state
	s.Values = c.state.Values.Clone()
	s.Errors = make(map[model.FieldName]string, len(c.state.Errors))
	for key, value := range c.state.Errors {
		s.Errors[key] = value
	}
	s.Loading = make(map[mask.Kind]bool, len(c.state.Loading))
	for key, value := range c.state.Loading {
		s.Loading[key] = value
	}
	return s
}

// AmountInput applies the currency input mask: the digits are read as cents
// and rendered as "1.234,56". Empty input stays empty.
func AmountInput(raw string) string {
	if mask.Digits(raw) == "" {
		return ""
	}
	return format.Decimal(format.CentsFromRaw(raw))
}
