package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrSlugConflict        = errors.New("slug already exists")
	ErrReferentialConflict = errors.New("still referenced")
	ErrInvalidEnum         = errors.New("invalid enum value")
	ErrValidation          = errors.New("validation failed")
	ErrFeaturedInvariant   = errors.New("more than one published article is featured")
)

type NotFoundError struct {
	Entity Entity
	Key    string
}

func NewNotFound(entity Entity, key any) NotFoundError {
	return NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type SlugConflictError struct {
	Entity Entity
	Slug   string
}

func (e SlugConflictError) Error() string {
	return fmt.Sprintf("%s slug already exists: %s", e.Entity, e.Slug)
}

func (e SlugConflictError) Is(target error) bool {
	return target == ErrSlugConflict
}

// ReferentialConflictError reports a delete blocked by Count articles that
// still reference the entity.
type ReferentialConflictError struct {
	Entity Entity
	ID     int64
	Count  int64
}

func (e ReferentialConflictError) Error() string {
	return fmt.Sprintf("%s %d cannot be deleted: %d articles still reference it", e.Entity, e.ID, e.Count)
}

func (e ReferentialConflictError) Is(target error) bool {
	return target == ErrReferentialConflict
}

type InvalidEnumError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s %q (allowed: %s)", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

func (e InvalidEnumError) Is(target error) bool {
	return target == ErrInvalidEnum
}

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, item := range e.Items {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(item.Error())
	}
	return b.String()
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{
		Field:   field,
		Message: msg,
	})
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e ValidationError) HasAny() bool {
	return len(e.Items) > 0
}

// Fields returns the per-field messages keyed by field name.
func (e ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Items))
	for _, item := range e.Items {
		out[item.Field] = item.Message
	}
	return out
}

// Required adds a "must not be blank" item for every empty value.
func (e *ValidationError) Required(fields map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if strings.TrimSpace(fields[name]) == "" {
			e.Add(name, "must not be blank")
		}
	}
}
