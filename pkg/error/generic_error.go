package error

// GenericError is implemented by every typed error in this package so the
// REST layer can map an error value to an HTTP status and machine code.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
