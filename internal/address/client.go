// Package address fala com o serviço mm-address, dono dos endereços das lojas.
package address

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Werneck0live/mm-store/internal/models"
)

const resourcePath = "/mm-address/"

// maxBodyBytes limita o quanto de uma resposta é lido.
const maxBodyBytes = 1 << 20

// Input carrega os campos de endereço; ponteiros distinguem "omitido" de "informado".
type Input struct {
	CEP          *string `json:"cep,omitempty"`
	Street       *string `json:"street,omitempty"`
	Number       *HouseNumber `json:"number,omitempty"`
	Neighborhood *string `json:"neighborhood,omitempty"`
	State        *string `json:"state,omitempty"`
	City         *string `json:"city,omitempty"`
	Complement   *string `json:"complement,omitempty"`
}

func (in Input) IsEmpty() bool {
	return in.CEP == nil && in.Street == nil && in.Number == nil && in.Neighborhood == nil &&
		in.State == nil && in.City == nil && in.Complement == nil
}

// HouseNumber aceita "number" como string ("S/N", "120A") ou número (120);
// é sempre enviado ao mm-address como string.
type HouseNumber string

func (n *HouseNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = HouseNumber(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("number must be a string or a number: %w", err)
	}
	*n = HouseNumber(num.String())
	return nil
}

type addressRecord struct {
	ID models.RefID `json:"id"`
}

// Option configura o Client.
type Option func(*Client)

// WithHTTPClient troca o http.Client usado nas chamadas.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Client faz chamadas síncronas, sem retry.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("address: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("address: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("cmp", "address.client")
	return c, nil
}

// CreateAddress cria o endereço e devolve o id gerado pelo serviço.
func (c *Client) CreateAddress(ctx context.Context, in Input) (models.RefID, error) {
	const op = "create"
	var rec addressRecord
	if err := c.do(ctx, op, http.MethodPost, resourcePath, nil, in, &rec); err != nil {
		return "", err
	}
	if rec.ID == "" {
		return "", &UpstreamError{Op: op, StatusCode: http.StatusBadGateway, Body: []byte(`{"error":"address service returned no id"}`)}
	}
	return rec.ID, nil
}

// UpdateAddress envia só os campos informados.
func (c *Client) UpdateAddress(ctx context.Context, id models.RefID, in Input) error {
	return c.do(ctx, "update", http.MethodPut, resourcePath+url.PathEscape(id.String()), nil, in, nil)
}

// FindAddressesByCity devolve os ids dos endereços da cidade; resposta vazia = nenhum.
func (c *Client) FindAddressesByCity(ctx context.Context, city string) ([]models.RefID, error) {
	var recs []addressRecord
	q := url.Values{"city": []string{city}}
	if err := c.do(ctx, "find_by_city", http.MethodGet, resourcePath, q, nil, &recs); err != nil {
		return nil, err
	}
	ids := make([]models.RefID, 0, len(recs))
	for _, r := range recs {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("address: encode %s body: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	u := c.buildURL(path, query)
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("address: build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("address_call_failed", "op", op, "url", u, "err", err)
		return &UnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &UnavailableError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	c.log.Debug("address_call", "op", op, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: raw}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &UpstreamError{Op: op, StatusCode: http.StatusBadGateway, Body: raw}
	}
	return nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
