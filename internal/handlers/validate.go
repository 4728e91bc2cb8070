package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
)

const maxBodyBytes = 1 << 20

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON checks the content type and decodes the body into dst. It
// returns the HTTP status to answer with when the request is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (int, error) {
	if !checkContentType(r, "application/json") {
		return http.StatusUnsupportedMediaType, errors.New("content type must be application/json")
	}

	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)
	}
	return http.StatusOK, nil
}
