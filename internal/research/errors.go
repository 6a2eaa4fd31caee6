package research

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MimeLyc/deep-research-agent/pkg/log"
)

type ErrorType int

const (
	ErrConfig ErrorType = iota
	ErrInvocation
	ErrOutput
	ErrStore
)

type ResearchError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *ResearchError {
	return &ResearchError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func WrapError(err error, errorType ErrorType, message string) *ResearchError {
	return &ResearchError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   err,
	}
}

func (e *ResearchError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		ctxParts := make([]string, 0, len(keys))
		for _, k := range keys {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *ResearchError) Unwrap() error {
	return e.Cause
}

func (e *ResearchError) WithContext(key string, value any) *ResearchError {
	e.Context[key] = value
	return e
}

func (t ErrorType) String() string {
	switch t {
	case ErrConfig:
		return "Config"
	case ErrInvocation:
		return "Invocation"
	case ErrOutput:
		return "Output"
	case ErrStore:
		return "Store"
	default:
		return "Unknown"
	}
}

func IsErrorType(err error, errorType ErrorType) bool {
	var researchErr *ResearchError
	if errors.As(err, &researchErr) {
		return researchErr.Type == errorType
	}
	return false
}

// TypeOf classifies err. Failures of the agent itself reach the caller
// unwrapped and are reported as ErrInvocation.
func TypeOf(err error) ErrorType {
	var researchErr *ResearchError
	if errors.As(err, &researchErr) {
		return researchErr.Type
	}
	return ErrInvocation
}

// Advice suggests what to check for a failed run.
func Advice(err error) string {
	switch TypeOf(err) {
	case ErrConfig:
		return "Check that the environment variables or .env file are set correctly"
	case ErrInvocation:
		return "Check the API endpoint, the API keys, the model name and network connectivity, then run again"
	case ErrOutput:
		return "Ensure the output directory exists and is writable"
	case ErrStore:
		return "Check STORE_PATH points to a writable location"
	default:
		return "Review the detailed error and the relevant configuration"
	}
}

// LogError reports err with its full chain and a hint.
func LogError(err error) {
	if err == nil {
		return
	}
	log.Error("Error during agent execution (%s): %v", TypeOf(err), err)
	log.Error("advice: %s", Advice(err))
}
