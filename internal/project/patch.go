package project

type fieldOp uint8

const (
	opKeep fieldOp = iota
	opSet
	opClear
)

// Field is one entry of a partial update: Keep (the zero value) leaves the
// field alone, Set assigns a value, Clear resets it to null.
type Field struct {
	op    fieldOp
	value string
}

// Keep leaves a field unchanged.
func Keep() Field { return Field{} }

// Set assigns v.
func Set(v string) Field { return Field{op: opSet, value: v} }

// Clear resets the field to its default (null).
func Clear() Field { return Field{op: opClear} }

// IsKeep reports whether the field is left unchanged.
func (f Field) IsKeep() bool { return f.op == opKeep }

// apply returns the field's effect on cur.
func (f Field) apply(cur Nullable) Nullable {
	switch f.op {
	case opSet:
		return Value(f.value)
	case opClear:
		return Null()
	}
	return cur
}

// Patch is a partial update. ID is deliberately absent: it never changes.
type Patch struct {
	Name          Field
	Path          Field
	Color         Field
	ProductionURL Field
	StagingURL    Field
	DevURL        Field
	ManagementURL Field
}

// IsEmpty reports whether every field is Keep.
func (p Patch) IsEmpty() bool {
	for _, f := range []Field{p.Name, p.Path, p.Color, p.ProductionURL, p.StagingURL, p.DevURL, p.ManagementURL} {
		if !f.IsKeep() {
			return false
		}
	}
	return true
}

// Apply returns the patched project and the names of the fields whose value
// actually changed. The input is not modified.
func (p Patch) Apply(cur Project) (Project, []string, error) {
	next := cur
	var changed []string

	switch p.Name.op {
	case opClear:
		return cur, nil, invalid("name", "cannot be cleared")
	case opSet:
		if p.Name.value == "" {
			return cur, nil, invalid("name", "must not be empty")
		}
		if p.Name.value != cur.Name {
			next.Name = p.Name.value
			changed = append(changed, "name")
		}
	}

	switch p.Path.op {
	case opClear:
		return cur, nil, invalid("path", "cannot be cleared")
	case opSet:
		if err := ValidatePath(p.Path.value); err != nil {
			return cur, nil, err
		}
		if p.Path.value != cur.Path {
			next.Path = p.Path.value
			changed = append(changed, "path")
		}
	}

	optional := []struct {
		name     string
		field    Field
		dst      *Nullable
		validate func(Nullable) error
	}{
		{"color", p.Color, &next.Color, ValidateColor},
		{"productionUrl", p.ProductionURL, &next.ProductionURL, urlValidator("productionUrl")},
		{"stagingUrl", p.StagingURL, &next.StagingURL, urlValidator("stagingUrl")},
		{"devUrl", p.DevURL, &next.DevURL, urlValidator("devUrl")},
		{"managementUrl", p.ManagementURL, &next.ManagementURL, urlValidator("managementUrl")},
	}
	for _, o := range optional {
		if o.field.IsKeep() {
			continue
		}
		updated := o.field.apply(*o.dst)
		if err := o.validate(updated); err != nil {
			return cur, nil, err
		}
		if updated == *o.dst {
			continue
		}
		*o.dst = updated
		changed = append(changed, o.name)
	}

	return next, changed, nil
}

func urlValidator(field string) func(Nullable) error {
	return func(n Nullable) error { return ValidateURL(field, n) }
}
