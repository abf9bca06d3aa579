// Package xata provides a storage.Storage implementation backed by a
// table in a hosted Xata database, spoken to over its REST API.
//
// The database is addressed by its URL plus a branch:
//
//	https://{workspace}.{region}.xata.sh/db/{database}:{branch}
//
// New never dials. Missing credentials or an unreachable host surface on
// the first call, which is what /health reports.
package xata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
)

// APIError is a non-2xx answer from the Xata API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("xata: status %d", e.StatusCode)
	}
	return fmt.Sprintf("xata: status %d: %s", e.StatusCode, e.Message)
}

// Xata is the hosted implementation of storage.Storage.
// It is safe for concurrent use.
type Xata struct {
	apiKey  string
	dbURL   string
	branch  string
	table   string
	timeout time.Duration
	client  *http.Client
}

// Option customises a Xata store.
type Option func(*Xata)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(x *Xata) { x.client = c }
}

// New returns a store bound to the database and branch in cfg.
func New(cfg *config.Config, opts ...Option) *Xata {
	x := &Xata{
		apiKey:  cfg.Xata.APIKey,
		dbURL:   strings.TrimRight(cfg.Xata.DatabaseURL, "/"),
		branch:  cfg.Xata.Branch,
		table:   cfg.Storage.Table,
		timeout: cfg.Storage.Timeout,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Table implements storage.Storage.
func (x *Xata) Table() string { return x.table }

type queryRequest struct {
	Filter map[string]any `json:"filter,omitempty"`
	Page   *page          `json:"page,omitempty"`
}

type page struct {
	Size int `json:"size"`
}

type queryResponse struct {
	Records []types.Student `json:"records"`
}

// recordBody is what insert and update send: the four client-settable
// columns, never the id.
type recordBody struct {
	Name           string `json:"std_name"`
	Class          int    `json:"std_class"`
	RegistrationNo string `json:"std_registration_no"`
	Phone          string `json:"std_phone"`
}

func newRecordBody(in types.StudentInput) recordBody {
	return recordBody{
		Name:           in.Name,
		Class:          in.ClassValue(),
		RegistrationNo: in.RegistrationNo,
		Phone:          in.Phone,
	}
}

// Ping implements storage.Storage.
func (x *Xata) Ping(ctx context.Context) error {
	if _, err := x.query(ctx, queryRequest{Page: &page{Size: 1}}); err != nil {
		return fmt.Errorf("xata.Ping: %w", err)
	}
	return nil
}

// CreateStudent implements storage.Storage.
func (x *Xata) CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error) {
	var student types.Student
	err := x.do(ctx, http.MethodPost, x.tablePath("data")+"?columns=*", newRecordBody(in), &student)
	if err != nil {
		return types.Student{}, fmt.Errorf("xata.CreateStudent: %w", err)
	}
	return student, nil
}

// GetStudents implements storage.Storage. Xata's default page size applies.
func (x *Xata) GetStudents(ctx context.Context) ([]types.Student, error) {
	students, err := x.query(ctx, queryRequest{})
	if err != nil {
		return nil, fmt.Errorf("xata.GetStudents: %w", err)
	}
	return students, nil
}

// FindStudentsByRegistrationNo implements storage.Storage.
func (x *Xata) FindStudentsByRegistrationNo(ctx context.Context, regNo string, limit int) ([]types.Student, error) {
	req := queryRequest{
		Filter: map[string]any{"std_registration_no": regNo},
	}
	if limit > 0 {
		req.Page = &page{Size: limit}
	}
	students, err := x.query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("xata.FindStudentsByRegistrationNo: %w", err)
	}
	return students, nil
}

// UpdateStudentByID implements storage.Storage.
func (x *Xata) UpdateStudentByID(ctx context.Context, id string, in types.StudentInput) (types.Student, error) {
	var student types.Student
	err := x.do(ctx, http.MethodPatch, x.recordPath(id)+"?columns=*", newRecordBody(in), &student)
	if err != nil {
		err = recordNotFound(err)
		return types.Student{}, fmt.Errorf("xata.UpdateStudentByID: %w", err)
	}
	return student, nil
}

// DeleteStudentByID implements storage.Storage.
func (x *Xata) DeleteStudentByID(ctx context.Context, id string) error {
	if err := x.do(ctx, http.MethodDelete, x.recordPath(id), nil, nil); err != nil {
		return fmt.Errorf("xata.DeleteStudentByID: %w", recordNotFound(err))
	}
	return nil
}

func (x *Xata) query(ctx context.Context, req queryRequest) ([]types.Student, error) {
	var resp queryResponse
	if err := x.do(ctx, http.MethodPost, x.tablePath("query"), req, &resp); err != nil {
		return nil, err
	}
	if resp.Records == nil {
		resp.Records = make([]types.Student, 0)
	}
	return resp.Records, nil
}

func (x *Xata) tablePath(suffix string) string {
	return fmt.Sprintf("%s:%s/tables/%s/%s", x.dbURL, x.branch, url.PathEscape(x.table), suffix)
}

func (x *Xata) recordPath(id string) string {
	return x.tablePath("data/" + url.PathEscape(id))
}

// do sends one request under the per-call timeout and decodes a 2xx JSON
// body into out (when out is non-nil).
func (x *Xata) do(ctx context.Context, method, endpoint string, in, out any) error {
	if x.apiKey == "" || x.dbURL == "" {
		return storage.ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+x.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	return apiErr
}

// recordNotFound marks a 404 on a record path as storage.ErrNotFound. A
// 404 on a table path means a missing table or branch and is left as is.
func recordNotFound(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return errors.Join(storage.ErrNotFound, err)
	}
	return err
}
