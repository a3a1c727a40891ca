package bigquery

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

func hasStatusCode(err error, statusCode int) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == statusCode
}

func IsNotFoundErr(err error) bool {
	return hasStatusCode(err, http.StatusNotFound)
}

// IsAlreadyExistsErr - another run created the table between our metadata lookup and create call.
func IsAlreadyExistsErr(err error) bool {
	return hasStatusCode(err, http.StatusConflict)
}
