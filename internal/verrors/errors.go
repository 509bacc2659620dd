// Package verrors defines the tagged error taxonomy shared by every core
// package. Callers switch on Kind rather than matching error strings.
package verrors

import "fmt"

// Kind discriminates the error families enumerated in the capsule design:
// storage, query, hook, MCP, and transport.
type Kind string

const (
	KindFrameNotFound       Kind = "FrameNotFound"
	KindFrameNotFoundByURI  Kind = "FrameNotFoundByUri"
	KindInvalidFrame        Kind = "InvalidFrame"
	KindInvalidToc          Kind = "InvalidToc"
	KindCheckpointFailed    Kind = "CheckpointFailed"
	KindVaultFull           Kind = "VaultFull"
	KindVecDimensionMismatch Kind = "VecDimensionMismatch"

	KindInvalidQuery Kind = "InvalidQuery"
	KindEmptyQuery   Kind = "EmptyQuery"

	KindHookTimeout      Kind = "HookTimeout"
	KindHookInvalidOutput Kind = "HookInvalidOutput"
	KindHookCrashed      Kind = "HookCrashed"

	KindMcpUnknownTool    Kind = "McpUnknownTool"
	KindMcpProtocol       Kind = "McpProtocol"
	KindMcpServerDead     Kind = "McpServerDead"
	KindMcpRpcError       Kind = "McpRpcError"
	KindMcpResponseTooLarge Kind = "McpResponseTooLarge"
)

// Error is the tagged result type every fallible core operation returns.
type Error struct {
	Kind   Kind
	Reason string
	// Structured fields used by specific kinds; zero value elsewhere.
	FrameID       uint64
	URI           string
	Expected      int
	Actual        int
	SizeBytes     int64
	CapBytes      int64
	Code          int
	Wrapped       error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	switch e.Kind {
	case KindVaultFull:
		return fmt.Sprintf("%s: size %d exceeds cap %d", e.Kind, e.SizeBytes, e.CapBytes)
	case KindVecDimensionMismatch:
		return fmt.Sprintf("%s: expected %d, got %d", e.Kind, e.Expected, e.Actual)
	case KindFrameNotFoundByURI:
		return fmt.Sprintf("%s: %s", e.Kind, e.URI)
	case KindFrameNotFound:
		return fmt.Sprintf("%s: %d", e.Kind, e.FrameID)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is implements errors.Is by Kind so callers can write
// errors.Is(err, verrors.New(verrors.KindFrameNotFound)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs a bare sentinel of the given kind, for use with errors.Is.
func New(kind Kind) *Error { return &Error{Kind: kind} }

func NotFound(id uint64) *Error {
	return &Error{Kind: KindFrameNotFound, FrameID: id}
}

func NotFoundByURI(uri string) *Error {
	return &Error{Kind: KindFrameNotFoundByURI, URI: uri}
}

func InvalidFrame(reason string) *Error {
	return &Error{Kind: KindInvalidFrame, Reason: reason}
}

func InvalidToc(reason string) *Error {
	return &Error{Kind: KindInvalidToc, Reason: reason}
}

func CheckpointFailed(reason string) *Error {
	return &Error{Kind: KindCheckpointFailed, Reason: reason}
}

func VaultFull(size, cap int64) *Error {
	return &Error{Kind: KindVaultFull, SizeBytes: size, CapBytes: cap}
}

func VecDimensionMismatch(expected, actual int) *Error {
	return &Error{Kind: KindVecDimensionMismatch, Expected: expected, Actual: actual}
}

func InvalidQuery(reason string) *Error {
	return &Error{Kind: KindInvalidQuery, Reason: reason}
}

func EmptyQuery() *Error {
	return &Error{Kind: KindEmptyQuery, Reason: "query is empty after stripping markup"}
}

func McpUnknownTool(name string) *Error {
	return &Error{Kind: KindMcpUnknownTool, Reason: name}
}

func McpProtocol(reason string) *Error {
	return &Error{Kind: KindMcpProtocol, Reason: reason}
}

func McpServerDead(name string) *Error {
	return &Error{Kind: KindMcpServerDead, Reason: name}
}

func McpRpcError(code int, message string) *Error {
	return &Error{Kind: KindMcpRpcError, Code: code, Reason: message}
}

func McpResponseTooLarge() *Error {
	return &Error{Kind: KindMcpResponseTooLarge, Reason: "response exceeds 10 MiB"}
}

func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Wrapped: err}
}
