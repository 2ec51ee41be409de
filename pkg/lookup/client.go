package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/edesteves10/contrat-cond/internal/logging"
	"github.com/edesteves10/contrat-cond/pkg/mask"
)

const (
	// DefaultCNPJURL is the BrasilAPI CNPJ endpoint; {digits} is replaced by
	// the normalised identifier.
	DefaultCNPJURL = "https://brasilapi.com.br/api/cnpj/v1/{digits}"
	// DefaultCEPURL is the ViaCEP endpoint.
	DefaultCEPURL = "https://viacep.com.br/ws/{digits}/json/"
	// DefaultTimeout bounds a lookup so the loading state always clears.
	DefaultTimeout = 10 * time.Second

	digitsPlaceholder = "{digits}"
	maxBodyBytes      = 1 << 20
)

// Client implements CNPJService and CEPService over HTTP.
type Client struct {
	http      *http.Client
	cnpjURL   string
	cepURL    string
	timeout   time.Duration
	logger    logging.Logger
	companies *lru.Cache[string, Company]
	addresses *lru.Cache[string, Address]
}

var (
	_ CNPJService = (*Client)(nil)
	_ CEPService  = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithCNPJURL overrides the CNPJ endpoint template.
func WithCNPJURL(url string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			c.cnpjURL = trimmed
		}
	}
}

// WithCEPURL overrides the CEP endpoint template.
func WithCEPURL(url string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			c.cepURL = trimmed
		}
	}
}

// WithTimeout bounds every request. Zero leaves requests bounded only by the
// caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger attaches a logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCacheSize keeps up to size successful responses per service in memory.
// Zero disables caching.
func WithCacheSize(size int) Option {
	return func(c *Client) {
		if size <= 0 {
			c.companies, c.addresses = nil, nil
			return
		}
		companies, err := lru.New[string, Company](size)
		if err != nil {
			return
		}
		addresses, err := lru.New[string, Address](size)
		if err != nil {
			return
		}
		c.companies, c.addresses = companies, addresses
	}
}

// NewClient constructs a lookup client with the public service defaults.
func NewClient(options ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		cnpjURL: DefaultCNPJURL,
		cepURL:  DefaultCEPURL,
		timeout: DefaultTimeout,
		logger:  logging.Nop{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// LookupCNPJ fetches company data for a 14 digit CNPJ. Non-success statuses
// are reported as *NotFoundError carrying the service message.
func (c *Client) LookupCNPJ(ctx context.Context, digits string) (Company, error) {
	digits = mask.Digits(digits)
	if len(digits) != mask.CNPJLength {
		return Company{}, fmt.Errorf("%w: cnpj must have %d digits", ErrInvalidInput, mask.CNPJLength)
	}
	if c.companies != nil {
		if cached, ok := c.companies.Get(digits); ok {
			c.logger.DebugCtx(ctx, "lookup cache hit", "service", "cnpj", "digits", digits)
			return cached, nil
		}
	}

	status, body, err := c.get(ctx, expand(c.cnpjURL, digits))
	if err != nil {
		c.logger.WarnCtx(ctx, "cnpj lookup failed", "digits", digits, "error", err)
		return Company{}, err
	}

	var payload cnpjPayload
	decodeErr := json.Unmarshal(body, &payload)
	if status < 200 || status >= 300 {
		c.logger.InfoCtx(ctx, "cnpj not found", "digits", digits, "status", status)
		return Company{}, &NotFoundError{Service: "cnpj", Message: payload.Message}
	}
	if decodeErr != nil {
		return Company{}, fmt.Errorf("%w: decode cnpj response: %v", ErrUnavailable, decodeErr)
	}

	company := payload.company()
	if c.companies != nil {
		c.companies.Add(digits, company)
	}
	c.logger.DebugCtx(ctx, "cnpj lookup resolved", "digits", digits)
	return company, nil
}

// LookupCEP fetches address data for an 8 digit CEP. The service answers
// unknown codes with a success status and an "erro" flag.
func (c *Client) LookupCEP(ctx context.Context, digits string) (Address, error) {
	digits = mask.Digits(digits)
	if len(digits) != mask.CEPLength {
		return Address{}, fmt.Errorf("%w: cep must have %d digits", ErrInvalidInput, mask.CEPLength)
	}
	if c.addresses != nil {
		if cached, ok := c.addresses.Get(digits); ok {
			c.logger.DebugCtx(ctx, "lookup cache hit", "service", "cep", "digits", digits)
			return cached, nil
		}
	}

	status, body, err := c.get(ctx, expand(c.cepURL, digits))
	if err != nil {
		c.logger.WarnCtx(ctx, "cep lookup failed", "digits", digits, "error", err)
		return Address{}, err
	}
	if status < 200 || status >= 300 {
		c.logger.InfoCtx(ctx, "cep not found", "digits", digits, "status", status)
		return Address{}, &NotFoundError{Service: "cep"}
	}

	var payload cepPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Address{}, fmt.Errorf("%w: decode cep response: %v", ErrUnavailable, err)
	}
	if payload.Erro {
		c.logger.InfoCtx(ctx, "cep not found", "digits", digits)
		return Address{}, &NotFoundError{Service: "cep"}
	}

	address := payload.address()
	if c.addresses != nil {
		c.addresses.Add(digits, address)
	}
	c.logger.DebugCtx(ctx, "cep lookup resolved", "digits", digits)
	return address, nil
}

func (c *Client) get(ctx context.Context, url string) (int, []byte, error) {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}
	return resp.StatusCode, body, nil
}

func expand(template, digits string) string {
	if strings.Contains(template, digitsPlaceholder) {
		return strings.ReplaceAll(template, digitsPlaceholder, digits)
	}
	return strings.TrimRight(template, "/") + "/" + digits
}
