package model

// Nullable is a patch value for a nullable field. A nil *Nullable in a patch
// leaves the field untouched; a Nullable whose Value is nil clears it.
type Nullable[T any] struct {
	Value *T
}

// Set returns a Nullable holding v
func Set[T any](v T) *Nullable[T] {
	return &Nullable[T]{Value: &v}
}

// Clear returns a Nullable that clears the field
func Clear[T any]() *Nullable[T] {
	return &Nullable[T]{}
}

// nullableOf copies p into a Nullable so the patch does not alias the record
func nullableOf[T any](p *T) *Nullable[T] {
	if p == nil {
		return Clear[T]()
	}
	return Set(*p)
}

// Any returns the value for storage, nil when cleared
func (n *Nullable[T]) Any() any {
	if n.Value == nil {
		return nil
	}
	return *n.Value
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// FieldChange is one changed field of a patch. Name is the Go field name,
// which is also the document path used by the Firestore backend.
type FieldChange struct {
	Name  string
	Value any
}

func ref[T any](v T) *T {
	return &v
}
