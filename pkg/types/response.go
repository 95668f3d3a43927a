package types

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// SuccessFlag is returned by mutations that report nothing but completion.
type SuccessFlag struct {
	Success bool `json:"success"`
}

// CreatedID is returned by inserts.
type CreatedID struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// ResultList wraps collection reads.
type ResultList[T any] struct {
	Results []T `json:"results"`
}
