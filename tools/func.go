package tools

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/chatmodel"
	"github.com/effective-security/agenttools/pkg/llmutils"
	"github.com/effective-security/agenttools/pkg/schema"
)

// Func adapts a typed function to the Tool interface.
// The request type is reflected into the parameter schema,
// validated, and unmarshaled before the function is invoked.
type Func[I any, O any] struct {
	name        string
	description string
	funcParams  any

	fn func(context.Context, *I) (*O, error)
}

// NewFunc creates a tool backed by the given function.
func NewFunc[I any, O any](name, description string, fn func(context.Context, *I) (*O, error)) (*Func[I, O], error) {
	var def I
	sc, err := schema.New(reflect.TypeOf(def))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	t := &Func[I, O]{
		name:        name,
		description: description,
		funcParams:  sc.Parameters,
		fn:          fn,
	}
	return t, nil
}

// MustFunc creates a tool backed by the given function, or panics.
// Request types are declared in this repository, so a schema failure
// is a programming error.
func MustFunc[I any, O any](name, description string, fn func(context.Context, *I) (*O, error)) *Func[I, O] {
	t, err := NewFunc(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t
}

var _ Tool[struct{}, struct{}] = (*Func[struct{}, struct{}])(nil)

func (t *Func[I, O]) Name() string {
	return t.name
}

func (t *Func[I, O]) Description() string {
	return t.description
}

func (t *Func[I, O]) Parameters() any {
	return t.funcParams
}

func (t *Func[I, O]) Run(ctx context.Context, req *I) (*O, error) {
	if err := ValidateInput(req); err != nil {
		return nil, err
	}
	return t.fn(ctx, req)
}

func (t *Func[I, O]) Call(ctx context.Context, input string) (string, error) {
	var req I
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}
