package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/opencontainers/go-digest"
)

const (
	ErrCodeJobUnknown       ErrCode = "JOB_UNKNOWN"
	ErrCodeJobInvalid       ErrCode = "JOB_INVALID"
	ErrCodeJobConflict      ErrCode = "JOB_CONFLICT"
	ErrCodeModelUnknown     ErrCode = "MODEL_UNKNOWN"
	ErrCodeModelInvalid     ErrCode = "MODEL_INVALID"
	ErrCodeEndpointUnknown  ErrCode = "ENDPOINT_UNKNOWN"
	ErrCodeEndpointInvalid  ErrCode = "ENDPOINT_INVALID"
	ErrCodeEndpointNotReady ErrCode = "ENDPOINT_NOT_READY"
	ErrCodeBlobUnknown      ErrCode = "BLOB_UNKNOWN"
	ErrCodeManifestUnknown  ErrCode = "MANIFEST_UNKNOWN"
	ErrCodeManifestInvalid  ErrCode = "MANIFEST_INVALID"
	ErrCodeIndexUnknown     ErrCode = "INDEX_UNKNOWN"
	ErrCodeDigestInvalid    ErrCode = "DIGEST_INVALID"
	ErrCodeNameInvalid      ErrCode = "NAME_INVALID"
	ErrCodeSizeInvalid      ErrCode = "SIZE_INVALID"
	ErrCodeInvalidParameter ErrCode = "INVALID_PARAMETER"
	ErrCodeUnauthorized     ErrCode = "UNAUTHORIZED"
	ErrCodeUnsupported      ErrCode = "UNSUPPORTED"
	ErrCodeInternal         ErrCode = "INTERNAL"
	ErrCodeUnknown          ErrCode = "UNKNOWN"
)

type ErrCode string

// ErrorInfo is the wire form of every platform error. Failures surface
// to clients unmodified, carrying the HTTP status they were born with.
type ErrorInfo struct {
	HttpStatus int     `json:"-"`
	Code       ErrCode `json:"code"`
	Message    string  `json:"message"`
	Detail     string  `json:"detail,omitempty"`
}

func (e ErrorInfo) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func IsErrCode(err error, code ErrCode) bool {
	if err == nil {
		return false
	}
	info := ErrorInfo{}
	if errors.As(err, &info) {
		return info.Code == code
	}
	return false
}

func NewJobUnknownError(name string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeJobUnknown, Message: fmt.Sprintf("training job: %s not found", name)}
}

func NewJobInvalidError(err error) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeJobInvalid, Message: err.Error()}
}

func NewJobConflictError(name string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusConflict, Code: ErrCodeJobConflict, Message: fmt.Sprintf("training job: %s already exists", name)}
}

func NewModelUnknownError(name string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeModelUnknown, Message: fmt.Sprintf("model: %s not found", name)}
}

func NewModelInvalidError(err error) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeModelInvalid, Message: err.Error()}
}

func NewEndpointUnknownError(name string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeEndpointUnknown, Message: fmt.Sprintf("endpoint: %s not found", name)}
}

func NewEndpointInvalidError(err error) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeEndpointInvalid, Message: err.Error()}
}

func NewEndpointNotReadyError(name string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusConflict, Code: ErrCodeEndpointNotReady, Message: fmt.Sprintf("endpoint: %s is not in service", name)}
}

func NewBlobUnknownError(digest digest.Digest) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeBlobUnknown, Message: fmt.Sprintf("blob: %s not found", digest.String())}
}

func NewManifestUnknownError(reference string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeManifestUnknown, Message: fmt.Sprintf("manifest: %s not found", reference)}
}

func NewManifestInvalidError(err error) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeManifestInvalid, Message: err.Error()}
}

func NewIndexUnknownError(repository string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeIndexUnknown, Message: fmt.Sprintf("index: %s not found", repository)}
}

func NewDigestInvalidError(got string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeDigestInvalid, Message: fmt.Sprintf("digest invalid: %s", got)}
}

func NewNameInvalidError(got string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeNameInvalid, Message: fmt.Sprintf("name invalid: %s", got)}
}

func NewContentTypeInvalidError(got string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeInvalidParameter, Message: fmt.Sprintf("content type invalid: %s", got)}
}

func NewContentLengthInvalidError(msg string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeSizeInvalid, Message: fmt.Sprintf("content length: %s", msg)}
}

func NewParameterInvalidError(msg string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeInvalidParameter, Message: msg}
}

func NewUnauthorizedError(msg string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: msg}
}

func NewUnsupportedError(msg string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotImplemented, Code: ErrCodeUnsupported, Message: msg}
}

func NewInternalError(err error) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusInternalServerError, Code: ErrCodeInternal, Message: err.Error()}
}
