package contextkeys

type contextKey string

const (
	UserIDKey  contextKey = "UserID"
	IsStaffKey contextKey = "IsStaff"
)
