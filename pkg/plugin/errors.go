package plugin

import "errors"

// ErrorCode classifies a training failure.
type ErrorCode string

const (
	// CodeInvalidParameters means the kernel, C or gamma was rejected.
	CodeInvalidParameters ErrorCode = "invalid_parameters"

	// CodeInvalidProblem means the training set was malformed.
	CodeInvalidProblem ErrorCode = "invalid_problem"

	// CodeDegenerateKernel means the kernel produced non-finite values.
	CodeDegenerateKernel ErrorCode = "degenerate_kernel"
)

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}

// codeOf extracts the code of an RPCError anywhere in err's chain.
func codeOf(err error) ErrorCode {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code
	}
	return ""
}
