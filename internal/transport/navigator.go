package transport

// View names the navigator understands
const (
	ViewLogin            = "login"
	ViewRegister         = "register"
	ViewForgotPassword   = "forgot-password"
	ViewVerifyEmail      = "verify-email"
	ViewVerificationSent = "verification-sent"
)

// Navigator is the UI context the client redirects when a session dies
type Navigator interface {
	// CurrentView returns the name of the view being shown
	CurrentView() string
	// Redirect switches to view
	Redirect(view string)
}

// IsAuthView reports whether view is one of the unauthenticated flows, where
// a 401 must not bounce the user to login.
func IsAuthView(view string) bool {
	switch view {
	case ViewLogin, ViewRegister, ViewForgotPassword, ViewVerifyEmail, ViewVerificationSent:
		return true
	}
	return false
}
