package resource

// Pagination is the page metadata computed by the server, passed through
// verbatim.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Page is one page of a listing
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Envelope is the success body of a single-record endpoint
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// ListEnvelope is the success body of a paginated endpoint
type ListEnvelope[T any] struct {
	Success    bool       `json:"success"`
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Page converts the envelope
func (e *ListEnvelope[T]) Page() *Page[T] {
	items := e.Data
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Pagination: e.Pagination}
}
