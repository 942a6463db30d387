package dispatch

import "encoding/json"

// Status classifies the outcome of a dispatch attempt.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// FallbackErrorMessage is returned when no more specific error information is
// available (transport failures, undecodable bodies, error bodies without a
// message field).
const FallbackErrorMessage = "something went wrong, please try again later"

// Response is the normalized result of one dispatch attempt. Constructed once
// per attempt and never mutated afterwards. Err is non-empty only when
// Status == StatusFailed; Data is whatever JSON decoding produced (object,
// array or scalar) or nil when decoding was not attempted or failed.
type Response struct {
	Status  Status
	Data    any
	Err     string
	Message string
}

// NewSuccessResponse builds a Response for a 2xx outcome.
func NewSuccessResponse(data any) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// NewFailedResponse builds a Response for any failed outcome.
func NewFailedResponse(data any, errMsg string) Response {
	return Response{Status: StatusFailed, Data: data, Err: errMsg}
}

// wireResponse is the fixed-key serialized form of a Response.
type wireResponse struct {
	Status  Status `json:"Response_Status"`
	Data    any    `json:"Response_Data"`
	Err     string `json:"Response_Exception,omitempty"`
	Message string `json:"Response_Message,omitempty"`
}

// MarshalJSON serializes the Response to its fixed-shape mapping. Response_Data
// is always present (null when absent); Response_Exception and Response_Message
// are omitted when empty.
func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireResponse{
		Status:  r.Status,
		Data:    r.Data,
		Err:     r.Err,
		Message: r.Message,
	})
}
