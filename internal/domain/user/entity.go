package user

// User represents a user entity in the system.
type User struct {
	ID       int64  // ID is assigned by storage on creation and never changes
	Name     string // Name is the full name of the user
	Username string // Username is the handle chosen by the user
	Email    string // Email is unique across all users (exact match)
}
