package domain

// Kind groups domain errors by how the outer layer should treat them.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindAuthentication
	KindAuthorization
	KindConflict
)

// Error is a business rule violation with a machine-readable code.
// Two errors are equal under errors.Is when their codes match.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Field   string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying a different human message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

func newError(kind Kind, code, msg, field string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Field: field}
}

var (
	ErrUserNotFound       = newError(KindNotFound, "USER_NOT_FOUND", "User not found", "")
	ErrUserAlreadyExists  = newError(KindConflict, "USER_ALREADY_EXISTS", "A user with this email already exists", "email")
	ErrUserNotVerified    = newError(KindAuthorization, "USER_NOT_VERIFIED", "Account is not verified", "")
	ErrInvalidCredentials = newError(KindAuthentication, "INVALID_CREDENTIALS", "Invalid email or password", "")
	ErrInvalidRole        = newError(KindValidation, "INVALID_ROLE", "Role must be OWNER or MEMBER", "role")

	ErrUnauthenticated  = newError(KindAuthentication, "AUTHENTICATION_ERROR", "Not authenticated", "")
	ErrInvalidToken     = newError(KindAuthentication, "INVALID_TOKEN", "Invalid token", "")
	ErrInvalidTokenType = newError(KindAuthentication, "INVALID_TOKEN_TYPE", "Invalid token", "")
	ErrTokenExpired     = newError(KindAuthentication, "TOKEN_EXPIRED", "Token has expired", "")
	ErrTokenRevoked     = newError(KindAuthentication, "TOKEN_REVOKED", "Token has been revoked", "")

	ErrForbidden    = newError(KindAuthorization, "AUTHORIZATION_ERROR", "Access denied", "")
	ErrAccessDenied = newError(KindAuthorization, "ACCESS_DENIED", "You can only access your own resources", "")

	ErrTaskNotFound     = newError(KindNotFound, "TASK_NOT_FOUND", "Task not found", "")
	ErrTaskAccessDenied = newError(KindAuthorization, "TASK_ACCESS_DENIED", "You do not have access to this task", "")
	ErrTaskInvalidDates = newError(KindValidation, "TASK_INVALID_DATES", "Due date must not be before start date", "due_date")

	ErrAssignmentNotFound      = newError(KindNotFound, "ASSIGNMENT_NOT_FOUND", "Assignment not found", "")
	ErrAssignmentAlreadyExists = newError(KindConflict, "ASSIGNMENT_ALREADY_EXISTS", "This user is already assigned to this task", "")

	ErrInvitationNotFound        = newError(KindNotFound, "INVITATION_NOT_FOUND", "Invitation not found", "")
	ErrInvitationExpired         = newError(KindValidation, "INVITATION_EXPIRED", "This invitation has expired", "")
	ErrInvitationAlreadyAccepted = newError(KindValidation, "INVITATION_ALREADY_ACCEPTED", "This invitation has already been accepted", "")
	ErrInvitationAlreadyExists   = newError(KindConflict, "INVITATION_ALREADY_EXISTS", "An invitation is already pending for this email and task", "")

	ErrEmailRequired      = newError(KindValidation, "EMAIL_REQUIRED", "Email is required", "email")
	ErrEmailInvalidFormat = newError(KindValidation, "EMAIL_INVALID_FORMAT", "Email format is invalid", "email")
	ErrEmailTooLong       = newError(KindValidation, "EMAIL_TOO_LONG", "Email must not exceed 255 characters", "email")

	ErrPasswordRequired = newError(KindValidation, "PASSWORD_REQUIRED", "Password is required", "password")
	ErrPasswordTooShort = newError(KindValidation, "PASSWORD_TOO_SHORT", "Password must be at least 8 characters", "password")
	ErrPasswordTooLong  = newError(KindValidation, "PASSWORD_TOO_LONG", "Password must not exceed 72 bytes", "password")
	ErrPasswordWeak     = newError(KindValidation, "PASSWORD_WEAK", "Password must contain an uppercase letter, a lowercase letter and a digit", "password")

	ErrTokenRequired = newError(KindValidation, "TOKEN_REQUIRED", "Token is required", "token")
	ErrTokenTooShort = newError(KindValidation, "TOKEN_TOO_SHORT", "Token must be at least 16 characters", "token")
)
