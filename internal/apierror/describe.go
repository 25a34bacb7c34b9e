package apierror

import "strings"

// Operation names the user action an error is described for
type Operation string

const (
	OpGeneric        Operation = ""
	OpLogin          Operation = "login"
	OpRegister       Operation = "register"
	OpForgotPassword Operation = "forgot-password"
)

// Description is a title plus detail suitable for a notification
type Description struct {
	Title       string
	Description string
}

var connectionFailed = Description{
	Title:       "Connection failed",
	Description: "Please check your internet connection and try again.",
}

// Describe maps err to a tailored message for op. Unknown codes fall back to
// the raw message, or to a generic text when there is none.
func Describe(op Operation, err error) Description {
	code := CodeOf(err)
	msg := MessageOf(err)

	if code == CodeNetwork {
		return connectionFailed
	}

	switch op {
	case OpLogin:
		switch {
		case code == CodeEmailNotVerified:
			return Description{"Email not verified", "Please check your inbox for the verification link to activate your account."}
		case code == CodeAccountLocked:
			return Description{"Account locked", "Too many failed login attempts. Please try again later or reset your password."}
		case code == CodeInvalidCredentials || strings.Contains(msg, "Invalid"):
			return Description{"Invalid credentials", "The email or password you entered is incorrect."}
		}
		return fallback("Login failed", msg, "Unable to sign in. Please try again.")

	case OpRegister:
		switch {
		case code == CodeEmailExists || strings.Contains(msg, "already exists"):
			return Description{"Email already registered", "This email is already in use. Try logging in or use a different email."}
		case code == CodeInvalidEmail:
			return Description{"Invalid email address", "Please provide a valid email address."}
		case code == CodeWeakPassword:
			return Description{"Password too weak", "Password must be at least 6 characters long."}
		case code == CodeEmailService:
			return Description{"Registration successful, but email failed", "Your account was created but we could not send the verification email. Please contact support."}
		}
		return fallback("Registration failed", msg, "Something went wrong. Please try again.")

	case OpForgotPassword:
		switch {
		case code == CodeUserNotFound || strings.Contains(msg, "not found"):
			return Description{"Email not found", "No account exists with this email address."}
		case code == CodeEmailService:
			return Description{"Email service unavailable", "Unable to send reset link at this time. Please try again later."}
		}
		return fallback("Failed to send reset link", msg, "Something went wrong. Please try again.")
	}

	return fallback("Request failed", msg, "Something went wrong. Please try again.")
}

func fallback(title, msg, generic string) Description {
	if msg == "" {
		msg = generic
	}
	return Description{Title: title, Description: msg}
}
