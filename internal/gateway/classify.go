package gateway

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/tidwall/gjson"
)

// status is what could be recovered from a provider error
type status struct {
	code    int64
	name    string // RPC status or provider error code
	message string
}

// Error text of a genai.APIError that reached us without its type, e.g. through
// fmt.Errorf("%v"): "Error 400, Message: ..., Status: INVALID_ARGUMENT, Details: ..."
var apiErrorRe = regexp.MustCompile(`Error (\d{3}), Message: (.*?), Status: ([A-Z_]+)`)

// Classify maps a provider error to a ServiceError. Structured fields in the
// error are preferred; message text matching is the fallback.
func Classify(err error, mode internal.Mode) *internal.ServiceError {
	return classify(err, mode, status{})
}

func classify(err error, mode internal.Mode, known status) *internal.ServiceError {
	if err == nil {
		return nil
	}
	var svcErr *internal.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	if isNetwork(err) {
		return internal.NewServiceError(internal.KindNetworkUnreachable, mode, err)
	}

	st := known
	if st.code == 0 && st.name == "" {
		st = parseStatus(err.Error())
	}
	kind := kindForStatus(st)
	if kind == "" {
		kind = kindForText(err.Error())
	}
	return internal.NewServiceError(kindForMode(kind, mode), mode, err)
}

// kindForMode keeps content-blocked to image generation. A blocked chat turn
// is reported as an unknown failure.
func kindForMode(kind internal.ErrorKind, mode internal.Mode) internal.ErrorKind {
	if kind == internal.KindContentBlocked && mode != internal.ModeImage {
		return internal.KindUnknown
	}
	return kind
}

func isNetwork(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// parseStatus pulls a status out of a JSON error body or a genai error string
func parseStatus(text string) status {
	if i := strings.Index(text, "{"); i >= 0 {
		body := text[i:]
		if gjson.Valid(body) {
			res := gjson.GetMany(body, "error.code", "error.status", "error.message", "error.type")
			st := status{message: res[2].String()}
			switch res[0].Type {
			case gjson.Number:
				st.code = res[0].Int()
				st.name = res[1].String()
			case gjson.String:
				st.name = res[0].String()
			}
			if st.name == "" {
				st.name = res[3].String()
			}
			if st.code != 0 || st.name != "" {
				return st
			}
		}
	}

	if m := apiErrorRe.FindStringSubmatch(text); m != nil {
		code, _ := strconv.ParseInt(m[1], 10, 64)
		return status{code: code, message: m[2], name: m[3]}
	}
	return status{}
}

func kindForStatus(st status) internal.ErrorKind {
	name := strings.ToUpper(st.name)
	switch {
	case strings.Contains(st.message, "API key not valid"),
		strings.Contains(name, "API_KEY"),
		name == "UNAUTHENTICATED", name == "PERMISSION_DENIED",
		st.code == 401, st.code == 403:
		return internal.KindCredentialInvalid
	case strings.Contains(strings.ToLower(st.message), "prompt was blocked"):
		return internal.KindContentBlocked
	case name == "INVALID_ARGUMENT", name == "FAILED_PRECONDITION", st.code == 400:
		return internal.KindMalformedRequest
	case st.code != 0 || name != "":
		return internal.KindUnknown
	}
	return ""
}

func kindForText(text string) internal.ErrorKind {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "API key not valid"):
		return internal.KindCredentialInvalid
	case strings.Contains(lower, "failed to fetch"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "network is unreachable"):
		return internal.KindNetworkUnreachable
	case strings.Contains(text, "400 Bad Request"):
		return internal.KindMalformedRequest
	case strings.Contains(lower, "prompt was blocked"):
		return internal.KindContentBlocked
	}
	return internal.KindUnknown
}
