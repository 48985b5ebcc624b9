package user

// Patch is a partial update of a User. Fields that are not set are left
// untouched by storage; they are never written as empty or NULL.
type Patch struct {
	Name     Optional[string]
	Username Optional[string]
	Email    Optional[string]
}

// Columns returns the column assignments for the supplied fields only.
func (p Patch) Columns() map[string]any {
	cols := make(map[string]any, 3)
	if v, ok := p.Name.Get(); ok {
		cols["name"] = v
	}
	if v, ok := p.Username.Get(); ok {
		cols["username"] = v
	}
	if v, ok := p.Email.Get(); ok {
		cols["email"] = v
	}
	return cols
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return !p.Name.IsSet() && !p.Username.IsSet() && !p.Email.IsSet()
}
