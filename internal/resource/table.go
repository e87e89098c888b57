package resource

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/volunteerhq/volunteer-api/internal/action"
	"github.com/volunteerhq/volunteer-api/internal/platform/logger"
	"github.com/volunteerhq/volunteer-api/internal/redact"
	"github.com/volunteerhq/volunteer-api/internal/schema"
)

// Implementation supplies the behaviour of a resource. Only List is
// required.
type Implementation[C, Row any] struct {
	// AccessCheck runs before every verb. Returning action.ErrNoAccess, or
	// any other error, denies the call.
	AccessCheck func(ctx context.Context, check AccessCheck[C], actx *action.Context) error

	List   func(ctx context.Context, req ListRequest[C], actx *action.Context) (ListResponse[Row], error)
	Create func(ctx context.Context, req CreateRequest[C, Row], actx *action.Context) (CreateResponse[Row], error)
	Update func(ctx context.Context, req UpdateRequest[C, Row], actx *action.Context) (UpdateResponse, error)
	Delete func(ctx context.Context, req DeleteRequest[C], actx *action.Context) (DeleteResponse, error)

	// WriteLog records a successful mutation. A failure is logged and does
	// not change the response, because the mutation has already been
	// committed by then.
	WriteLog func(ctx context.Context, change Change[C, Row], mutation Mutation, actx *action.Context) error
}

// Table serves one resource.
type Table[C, Row any] struct {
	name       string
	impl       Implementation[C, Row]
	sortFields []string
	sortable   map[string]struct{}
}

// Option configures a Table.
type Option func(*options)

type options struct {
	name string
}

// WithName sets the name used in logs and traces. It defaults to the row
// type's name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// New validates impl and prepares the per-verb definitions.
func New[C, Row any](impl Implementation[C, Row], opts ...Option) (*Table[C, Row], error) {
	if impl.List == nil {
		return nil, ErrMissingList
	}

	contextType := reflect.TypeOf((*C)(nil)).Elem()
	if contextType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: context type %s is not a struct", ErrInvalidType, contextType)
	}
	rowType := reflect.TypeOf((*Row)(nil)).Elem()
	if rowType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: row type %s is not a struct", ErrInvalidType, rowType)
	}
	if impl.Create != nil || impl.Update != nil {
		idType, ok := schema.FieldTypeByJSONName(rowType, "id")
		if !ok || !schema.IsInteger(idType) {
			return nil, fmt.Errorf("%w: row type %s needs an integer \"id\" field", ErrInvalidType, rowType)
		}
	}

	o := options{name: strings.ToLower(rowType.Name())}
	for _, opt := range opts {
		opt(&o)
	}

	fields := schema.JSONFields(rowType)
	sortable := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		sortable[f] = struct{}{}
	}

	return &Table[C, Row]{
		name:       o.name,
		impl:       impl,
		sortFields: fields,
		sortable:   sortable,
	}, nil
}

// SortFields returns the keys a listing may be sorted by.
func (t *Table[C, Row]) SortFields() []string {
	return append([]string(nil), t.sortFields...)
}

// Mount registers the four verbs on r.
func (t *Table[C, Row]) Mount(r chi.Router, d *action.Dispatcher) {
	r.Get("/", t.List(d))
	r.Post("/", t.Create(d))
	r.Put("/{id}", t.Update(d))
	r.Delete("/{id}", t.Delete(d))
}

func (t *Table[C, Row]) List(d *action.Dispatcher) http.HandlerFunc {
	def := action.Definition[ListRequest[C], ListResponse[Row]]{
		Name:         t.name + "." + string(VerbList),
		CheckRequest: t.checkList,
	}
	return action.Execute(d, def, handle(t, verb[C, Row, ListRequest[C], ListResponse[Row]]{
		name:    VerbList,
		impl:    t.impl.List,
		context: func(req ListRequest[C]) C { return req.Context },
	}))
}

func (t *Table[C, Row]) Create(d *action.Dispatcher) http.HandlerFunc {
	def := action.Definition[CreateRequest[C, Row], CreateResponse[Row]]{
		Name:          t.name + "." + string(VerbCreate),
		CheckResponse: checkCreated[Row],
	}
	return action.Execute(d, def, handle(t, verb[C, Row, CreateRequest[C, Row], CreateResponse[Row]]{
		name:     VerbCreate,
		mutation: MutationCreated,
		impl:     t.impl.Create,
		context:  func(req CreateRequest[C, Row]) C { return req.Context },
		change: func(req CreateRequest[C, Row], resp CreateResponse[Row]) Change[C, Row] {
			id, _ := rowID(resp.Row)
			return Change[C, Row]{Context: req.Context, ID: id, Row: resp.Row}
		},
	}))
}

func (t *Table[C, Row]) Update(d *action.Dispatcher) http.HandlerFunc {
	def := action.Definition[UpdateRequest[C, Row], UpdateResponse]{
		Name:         t.name + "." + string(VerbUpdate),
		CheckRequest: checkUpdate[C, Row],
	}
	return action.Execute(d, def, handle(t, verb[C, Row, UpdateRequest[C, Row], UpdateResponse]{
		name:     VerbUpdate,
		mutation: MutationUpdated,
		impl:     t.impl.Update,
		context:  func(req UpdateRequest[C, Row]) C { return req.Context },
		change: func(req UpdateRequest[C, Row], _ UpdateResponse) Change[C, Row] {
			row := req.Row
			return Change[C, Row]{Context: req.Context, ID: req.ID, Row: &row}
		},
	}))
}

func (t *Table[C, Row]) Delete(d *action.Dispatcher) http.HandlerFunc {
	def := action.Definition[DeleteRequest[C], DeleteResponse]{
		Name: t.name + "." + string(VerbDelete),
	}
	return action.Execute(d, def, handle(t, verb[C, Row, DeleteRequest[C], DeleteResponse]{
		name:     VerbDelete,
		mutation: MutationDeleted,
		impl:     t.impl.Delete,
		context:  func(req DeleteRequest[C]) C { return req.Context },
		change: func(req DeleteRequest[C], _ DeleteResponse) Change[C, Row] {
			return Change[C, Row]{Context: req.Context, ID: req.ID}
		},
	}))
}

type outcome interface {
	succeeded() bool
}

// verb is what differs between the four handlers.
type verb[C, Row, Req any, Resp outcome] struct {
	name     Verb
	mutation Mutation
	impl     func(context.Context, Req, *action.Context) (Resp, error)
	context  func(Req) C
	change   func(Req, Resp) Change[C, Row]
}

// handle wraps a verb: access check, then the verb itself, then WriteLog
// for successful mutations.
func handle[C, Row, Req any, Resp outcome](t *Table[C, Row], v verb[C, Row, Req, Resp]) action.Handler[Req, Resp] {
	return func(ctx context.Context, req Req, actx *action.Context) (Resp, error) {
		var zero Resp
		if v.impl == nil {
			return zero, fmt.Errorf("%w: %s %s", ErrNotImplemented, t.name, v.name)
		}

		if t.impl.AccessCheck != nil {
			check := AccessCheck[C]{Verb: v.name, Context: v.context(req), Request: req}
			if err := t.impl.AccessCheck(ctx, check, actx); err != nil {
				return zero, err
			}
		}

		resp, err := v.impl(ctx, req, actx)
		if err != nil {
			return zero, err
		}

		if v.mutation != "" && resp.succeeded() && t.impl.WriteLog != nil {
			if err := t.impl.WriteLog(ctx, v.change(req, resp), v.mutation, actx); err != nil {
				logger.FromContext(ctx).ErrorContext(ctx, "failed to write resource log",
					slog.String("resource", t.name),
					slog.String("mutation", string(v.mutation)),
					slog.String("error", redact.Error(err)))
			}
		}
		return resp, nil
	}
}

func (t *Table[C, Row]) checkList(req *ListRequest[C]) error {
	if req.Sort == nil {
		return nil
	}
	if _, ok := t.sortable[req.Sort.Field]; !ok {
		options := make([]string, len(t.sortFields))
		for i, f := range t.sortFields {
			options[i] = "'" + f + "'"
		}
		return schema.Issuef("sort.field", "Invalid enum value. Expected %s, received '%s'",
			strings.Join(options, " | "), req.Sort.Field)
	}
	return nil
}

func checkUpdate[C, Row any](req *UpdateRequest[C, Row]) error {
	id, ok := rowID(&req.Row)
	if !ok {
		return schema.Issuef("row.id", "Required")
	}
	if id != req.ID {
		return schema.Issuef("row.id", "Row id %d does not match the route id %d", id, req.ID)
	}
	return nil
}

func checkCreated[Row any](resp *CreateResponse[Row]) error {
	if !resp.Success {
		return nil
	}
	if id, ok := rowID(resp.Row); !ok || id == 0 {
		return schema.Issuef("row.id", "Expected a non-zero numeric id")
	}
	return nil
}

// rowID reads the integer "id" field of row.
func rowID[Row any](row *Row) (int64, bool) {
	if row == nil {
		return 0, false
	}
	field, ok := schema.FieldByJSONName(reflect.ValueOf(row), "id")
	if !ok {
		return 0, false
	}
	for field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return 0, false
		}
		field = field.Elem()
	}
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return field.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(field.Uint()), true
	}
	return 0, false
}
