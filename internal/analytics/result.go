package analytics

// ResultState is the lifecycle of an asynchronous query.
type ResultState int

const (
	StateLoading ResultState = iota
	StateReady
	StateFailed
)

func (s ResultState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "loading"
	}
}

// Result carries the outcome of a query that may not have finished yet.
// The zero value is loading.
type Result[T any] struct {
	State ResultState
	Data  T
	Err   error
}

// Loading returns a result that has not arrived yet.
func Loading[T any]() Result[T] {
	return Result[T]{State: StateLoading}
}

// Ready wraps data that arrived.
func Ready[T any](data T) Result[T] {
	return Result[T]{State: StateReady, Data: data}
}

// Failed wraps a fetch error.
func Failed[T any](err error) Result[T] {
	return Result[T]{State: StateFailed, Err: err}
}

// From builds a ready or failed result from a call's return values.
func From[T any](data T, err error) Result[T] {
	if err != nil {
		return Failed[T](err)
	}
	return Ready(data)
}

func (r Result[T]) IsLoading() bool { return r.State == StateLoading }
func (r Result[T]) IsReady() bool   { return r.State == StateReady }
func (r Result[T]) IsError() bool   { return r.State == StateFailed }

// OrZero returns the data when ready and the zero value otherwise, so pure
// transforms can run on data that has not arrived.
func (r Result[T]) OrZero() T {
	if r.State != StateReady {
		var zero T
		return zero
	}
	return r.Data
}
