package utils

// ResponseData is the envelope every REST endpoint returns. Status mirrors the
// HTTP status code for handler bookkeeping and is not serialized.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}
