package resource

import (
	"encoding/json"

	"github.com/volunteerhq/volunteer-api/internal/action"
)

// Verb names one of the four operations of a resource.
type Verb string

const (
	VerbList   Verb = "list"
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

// Mutation is the label handed to WriteLog.
type Mutation string

const (
	MutationCreated Mutation = "Created"
	MutationUpdated Mutation = "Updated"
	MutationDeleted Mutation = "Deleted"
)

// Pagination selects one page of a listing. Pages are zero-based. The
// bounds keep Page*PageSize well inside an int.
type Pagination struct {
	Page     int `json:"page" validate:"gte=0,lte=1000000"`
	PageSize int `json:"pageSize" validate:"gt=0,lte=1000"`
}

// Offset is the number of rows before the page.
func (p *Pagination) Offset() int {
	if p == nil {
		return 0
	}
	return p.Page * p.PageSize
}

// Sort orders a listing by one of the row's own keys. A nil direction
// leaves the order to the store.
type Sort struct {
	Field string  `json:"field" validate:"required"`
	Sort  *string `json:"sort" validate:"omitempty,oneof=asc desc"`
}

// Descending reports whether the sort direction is "desc".
func (s *Sort) Descending() bool {
	return s != nil && s.Sort != nil && *s.Sort == "desc"
}

type ListRequest[C any] struct {
	Context    C           `json:",squash"`
	Pagination *Pagination `json:"pagination"`
	Sort       *Sort       `json:"sort"`
}

type CreateRequest[C, Row any] struct {
	Context C   `json:",squash"`
	Row     Row `json:"row"`
}

// UpdateRequest carries the full updated row. Its id must equal ID.
type UpdateRequest[C, Row any] struct {
	Context C     `json:",squash"`
	ID      int64 `json:"id"`
	Row     Row   `json:"row"`
}

type DeleteRequest[C any] struct {
	Context C     `json:",squash"`
	ID      int64 `json:"id"`
}

// ListResponse is a page of rows. RowCount is the total number of rows
// matching the request, not the length of the page.
type ListResponse[Row any] struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty" validate:"excluded_if=Success true"`
	RowCount int    `json:"rowCount" validate:"gte=0"`
	Rows     []Row  `json:"rows" validate:"dive"`
}

// CreateResponse carries the stored row, including the id it was given.
type CreateResponse[Row any] struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty" validate:"excluded_if=Success true"`
	Row     *Row   `json:"row,omitempty" validate:"required_if=Success true"`
}

type UpdateResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty" validate:"excluded_if=Success true"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty" validate:"excluded_if=Success true"`
}

// Each response is a union on success: the failure variant carries only
// the error.

type listSuccess[Row any] struct {
	Success  bool  `json:"success"`
	RowCount int   `json:"rowCount"`
	Rows     []Row `json:"rows"`
}

func (r ListResponse[Row]) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(action.Failure{Error: r.Error})
	}
	rows := r.Rows
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(listSuccess[Row]{Success: true, RowCount: r.RowCount, Rows: rows})
}

type createSuccess[Row any] struct {
	Success bool `json:"success"`
	Row     *Row `json:"row"`
}

func (r CreateResponse[Row]) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(action.Failure{Error: r.Error})
	}
	return json.Marshal(createSuccess[Row]{Success: true, Row: r.Row})
}

func (r ListResponse[Row]) succeeded() bool   { return r.Success }
func (r CreateResponse[Row]) succeeded() bool { return r.Success }
func (r UpdateResponse) succeeded() bool      { return r.Success }
func (r DeleteResponse) succeeded() bool      { return r.Success }

// AccessCheck describes the call being authorised.
type AccessCheck[C any] struct {
	Verb    Verb
	Context C
	// Request is the validated verb request, one of the *Request types.
	Request any
}

// Change describes a committed mutation for WriteLog.
type Change[C, Row any] struct {
	Context C
	ID      int64
	// Row is the row as created or updated. It is nil for deletes.
	Row *Row
}
