package transport

import (
	"io"
	"net/http"
	"net/url"
)

const contentTypeJSON = "application/json"

type requestOptions struct {
	query       url.Values
	header      http.Header
	contentType string
	raw         io.Reader
}

// RequestOption customizes a single request
type RequestOption func(*requestOptions)

// WithQuery appends query values to the request URL
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) {
		for k, vs := range q {
			for _, v := range vs {
				o.query.Add(k, v)
			}
		}
	}
}

// WithHeader sets a request header, replacing the client default
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set(key, value)
	}
}

// WithContentType overrides the default JSON content type
func WithContentType(ct string) RequestOption {
	return func(o *requestOptions) {
		o.contentType = ct
	}
}

// WithRawBody sends r as the body instead of the JSON encoding of body
func WithRawBody(r io.Reader) RequestOption {
	return func(o *requestOptions) {
		o.raw = r
	}
}

func newRequestOptions(opts []RequestOption) *requestOptions {
	o := &requestOptions{
		query:       url.Values{},
		header:      http.Header{},
		contentType: contentTypeJSON,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
