package models

// Referent is implemented by every entity that can sit behind a foreign key.
type Referent interface {
	RefID() string
	RefLabel() string
}

// Ref is a foreign-key field that is either a raw ID or a fully resolved
// entity. The data-access layer decides which; everything downstream asks
// Label() and never type-switches on the payload.
type Ref[T Referent] struct {
	id       string
	resolved *T
}

func RawRef[T Referent](id string) Ref[T] {
	return Ref[T]{id: id}
}

func ResolvedRef[T Referent](entity *T) Ref[T] {
	return Ref[T]{resolved: entity}
}

// Get returns the resolved entity, if any.
func (r Ref[T]) Get() (*T, bool) {
	return r.resolved, r.resolved != nil
}

func (r Ref[T]) ID() string {
	if r.resolved != nil {
		return (*r.resolved).RefID()
	}
	return r.id
}

// Label renders the human-readable name when the entity is populated and
// falls back to the raw ID, or "N/A" when the reference is empty.
func (r Ref[T]) Label() string {
	if r.resolved != nil {
		return (*r.resolved).RefLabel()
	}
	if r.id == "" {
		return "N/A"
	}
	return r.id
}

func (r Ref[T]) IsZero() bool {
	return r.resolved == nil && r.id == ""
}
