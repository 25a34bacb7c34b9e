// Package resource is the generic repository shared by every entity of the
// admin API. An entity repository embeds the capabilities its endpoints
// support: Collection for listing and lookup, Creator and Mutator for writes.
package resource

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

// ErrEmptyID is returned before any request when a record id is missing
var ErrEmptyID = errors.New("resource: empty id")

// Endpoints builds the paths of one entity family
type Endpoints struct {
	Base string
}

// Item returns the path of a single record
func (e Endpoints) Item(id string) string {
	return e.Base + "/" + url.PathEscape(id)
}

// Sub returns a path below Base, escaping each segment
func (e Endpoints) Sub(segments ...string) string {
	var b strings.Builder
	b.WriteString(e.Base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// Call sends a request and returns the data of the success envelope
func Call[T any](ctx context.Context, c *transport.Client, method, path string, body any, opts ...transport.RequestOption) (*T, error) {
	env, err := transport.Decode[Envelope[T]](ctx, c, method, path, body, opts...)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Exec sends a request whose response data is not needed
func Exec(ctx context.Context, c *transport.Client, method, path string, body any, opts ...transport.RequestOption) error {
	_, err := c.Do(ctx, method, path, body, opts...)
	return err
}

// Collection lists and fetches records of type T
type Collection[T any] struct {
	client    *transport.Client
	endpoints Endpoints
}

// NewCollection creates a collection rooted at base, for example /api/products
func NewCollection[T any](c *transport.Client, base string) Collection[T] {
	return Collection[T]{client: c, endpoints: Endpoints{Base: base}}
}

// List fetches one page
func (r Collection[T]) List(ctx context.Context, q Query) (*Page[T], error) {
	env, err := transport.Decode[ListEnvelope[T]](ctx, r.client, http.MethodGet, r.endpoints.Base, nil,
		transport.WithQuery(q.Values()))
	if err != nil {
		return nil, err
	}
	return env.Page(), nil
}

// Get fetches a record by id
func (r Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	return Call[T](ctx, r.client, http.MethodGet, r.endpoints.Item(id), nil)
}

// Client returns the transport the collection sends through
func (r Collection[T]) Client() *transport.Client {
	return r.client
}

// Endpoints returns the path builder of the collection
func (r Collection[T]) Endpoints() Endpoints {
	return r.endpoints
}

// Creator creates records of type T
type Creator[T any] struct {
	client    *transport.Client
	endpoints Endpoints
}

// NewCreator creates a Creator rooted at base
func NewCreator[T any](c *transport.Client, base string) Creator[T] {
	return Creator[T]{client: c, endpoints: Endpoints{Base: base}}
}

// Create posts patch and returns the stored record
func (r Creator[T]) Create(ctx context.Context, patch any) (*T, error) {
	return Call[T](ctx, r.client, http.MethodPost, r.endpoints.Base, patch)
}

// Mutator updates and deletes records of type T
type Mutator[T any] struct {
	client    *transport.Client
	endpoints Endpoints
}

// NewMutator creates a Mutator rooted at base
func NewMutator[T any](c *transport.Client, base string) Mutator[T] {
	return Mutator[T]{client: c, endpoints: Endpoints{Base: base}}
}

// Update applies patch with PUT and returns the stored record
func (r Mutator[T]) Update(ctx context.Context, id string, patch any) (*T, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	return Call[T](ctx, r.client, http.MethodPut, r.endpoints.Item(id), patch)
}

// Delete removes a record
func (r Mutator[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	return Exec(ctx, r.client, http.MethodDelete, r.endpoints.Item(id), nil)
}
