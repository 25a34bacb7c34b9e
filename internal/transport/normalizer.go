package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prohmpiriya/glownatura-admin/internal/apierror"
	"github.com/prohmpiriya/glownatura-admin/pkg/logger"
	"go.uber.org/zap"
)

// DefaultRedirectDelay is how long after a 401 the login redirect fires
const DefaultRedirectDelay = 100 * time.Millisecond

// Session is the token holder the client reads and the normalizer clears
type Session interface {
	Token() string
	Clear(ctx context.Context) error
}

// Normalizer turns transport failures and non-2xx responses into
// *apierror.Error. It is the only place that interprets HTTP failure
// semantics, including the 401 session teardown.
type Normalizer struct {
	session   Session
	navigator Navigator
	delay     time.Duration
	log       *logger.Logger
}

// NewNormalizer creates a normalizer. navigator may be nil.
func NewNormalizer(sess Session, navigator Navigator, delay time.Duration, log *logger.Logger) *Normalizer {
	if delay <= 0 {
		delay = DefaultRedirectDelay
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Normalizer{
		session:   sess,
		navigator: navigator,
		delay:     delay,
		log:       log,
	}
}

// Network normalizes a request that got no response
func (n *Normalizer) Network(cause error) *apierror.Error {
	return apierror.Network(cause)
}

// HTTP normalizes a non-2xx response
func (n *Normalizer) HTTP(ctx context.Context, status int, body []byte) *apierror.Error {
	if status == http.StatusUnauthorized {
		n.unauthorized(ctx)
	}

	message, code := parseErrorBody(body)
	return apierror.HTTP(status, code, message, fmt.Errorf("unexpected status %d", status))
}

func (n *Normalizer) unauthorized(ctx context.Context) {
	if n.session != nil {
		if err := n.session.Clear(context.WithoutCancel(ctx)); err != nil {
			n.log.Warn("failed to clear session after 401", zap.Error(err))
		}
	}

	if n.navigator == nil {
		return
	}
	if IsAuthView(n.navigator.CurrentView()) {
		return
	}

	nav := n.navigator
	time.AfterFunc(n.delay, func() {
		nav.Redirect(ViewLogin)
	})
}

type errorBody struct {
	Error     json.RawMessage `json:"error"`
	Message   json.RawMessage `json:"message"`
	ErrorCode json.RawMessage `json:"errorCode"`
}

type errorObject struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// parseErrorBody extracts the message and code of an error envelope. The
// error field is either a string or a {code, message} object. Bodies that
// are not JSON yield nothing.
func parseErrorBody(body []byte) (message, code string) {
	var eb errorBody
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		return "", ""
	}

	var objCode string
	if s := rawString(eb.Error); s != "" {
		message = s
	} else {
		var obj errorObject
		if len(eb.Error) > 0 && json.Unmarshal(eb.Error, &obj) == nil {
			message = obj.Message
			objCode = obj.Code
		}
	}
	if message == "" {
		message = rawString(eb.Message)
	}

	code = rawString(eb.ErrorCode)
	if code == "" {
		code = objCode
	}
	return message, code
}

func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
