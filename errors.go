package supremetask

import "errors"

var (
	// Call errors.
	ErrTypeMismatch = errors.New("supremetask: argument type mismatch")
	ErrNoRunContext = errors.New("supremetask: no active task run context")
	ErrNoFlowRun    = errors.New("supremetask: task called outside of a flow run")
	ErrUnknownTask  = errors.New("supremetask: task not registered")

	// Configuration errors.
	ErrInvalidConfig     = errors.New("supremetask: invalid configuration")
	ErrUnknownSerializer = errors.New("supremetask: unknown serializer")
	ErrUnknownStorage    = errors.New("supremetask: unknown result storage")
	ErrInvalidPolicy     = errors.New("supremetask: invalid input storage policy")

	// Storage errors.
	ErrNoStorage          = errors.New("supremetask: no result storage configured")
	ErrKeyNotFound        = errors.New("supremetask: storage key not found")
	ErrListUnsupported    = errors.New("supremetask: storage does not support listing")
	ErrResultNotPersisted = errors.New("supremetask: result was not persisted")

	// Run errors.
	ErrTaskTimeout = errors.New("supremetask: task run timed out")
	ErrFlowTimeout = errors.New("supremetask: flow run timed out")
)
