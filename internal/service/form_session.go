package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
)

// FormSchema validates a form value and returns one message per failing
// field, keyed by the field's JSON name. An empty map means valid.
type FormSchema[T any] func(T) map[string]string

// FormSession holds one entity form between edits: the current values, the
// values it was opened with, and whether a submit is running. Submit is
// gated on the schema and never runs twice concurrently.
type FormSession[T any] struct {
	mu         sync.Mutex
	initial    T
	value      T
	schema     FormSchema[T]
	submitting bool
}

// NewFormSession opens a form seeded with initial.
func NewFormSession[T any](initial T, schema FormSchema[T]) *FormSession[T] {
	return &FormSession[T]{initial: initial, value: initial, schema: schema}
}

// Value returns a copy of the current values.
func (f *FormSession[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Update applies fn to the current values.
func (f *FormSession[T]) Update(fn func(*T)) T {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.value)
	return f.value
}

// Seed replaces both the current and the initial values, e.g. when an
// edit form is opened for an existing entity.
func (f *FormSession[T]) Seed(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initial = v
	f.value = v
}

// Reset restores the initial values.
func (f *FormSession[T]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = f.initial
}

// Submitting reports whether a submit is in flight.
func (f *FormSession[T]) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Validate runs the schema against the current values.
func (f *FormSession[T]) Validate() error {
	return validateWith(f.schema, f.Value())
}

// Submit validates the current values and hands them to fn. The form is
// reset to its initial values only when fn succeeds.
func (f *FormSession[T]) Submit(ctx context.Context, fn func(context.Context, T) error) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return appErrors.ErrMutationInFlight
	}
	value := f.value
	if err := validateWith(f.schema, value); err != nil {
		f.mu.Unlock()
		return err
	}
	f.submitting = true
	f.mu.Unlock()

	err := fn(ctx, value)

	f.mu.Lock()
	f.submitting = false
	if err == nil {
		f.value = f.initial
	}
	f.mu.Unlock()
	return err
}

func validateWith[T any](schema FormSchema[T], v T) error {
	if schema == nil {
		return nil
	}
	if fields := schema(v); len(fields) > 0 {
		return appErrors.Validation("please fix the highlighted fields", fields)
	}
	return nil
}

// newFormValidator returns a validator that reports JSON field names.
func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// structSchema adapts validator tags into a FormSchema. messages maps a
// JSON field name to the text shown when any rule on it fails; fields
// without an entry get a generic message.
func structSchema[T any](validate *validator.Validate, messages map[string]string, extra func(T, map[string]string)) FormSchema[T] {
	return func(v T) map[string]string {
		fields := map[string]string{}
		if err := validate.Struct(v); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					name := fe.Field()
					if _, seen := fields[name]; seen {
						continue
					}
					if msg, ok := messages[name]; ok {
						fields[name] = msg
					} else {
						fields[name] = "invalid value"
					}
				}
			} else {
				fields["_"] = err.Error()
			}
		}
		if extra != nil {
			extra(v, fields)
		}
		return fields
	}
}
