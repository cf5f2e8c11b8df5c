package platform

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
)

func ResponseError(w http.ResponseWriter, err error) {
	info := apierrors.ErrorInfo{}
	if !errors.As(err, &info) {
		info = apierrors.ErrorInfo{
			HttpStatus: http.StatusBadRequest,
			Code:       apierrors.ErrCodeUnknown,
			Message:    err.Error(),
			Detail:     err.Error(),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(info.HttpStatus)
	json.NewEncoder(w).Encode(info)
}

func ResponseOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}

func ResponseCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(data)
}
