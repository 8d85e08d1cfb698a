package error

import "net/http"

// NotFoundError marks a lookup that matched nothing: an unknown customer,
// agent, message id or provider message id. Callers that can tolerate the
// absence (the status reconciler discarding stray callbacks) detect it with
// errors.As; everyone else lets it surface as a 404.
type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}
