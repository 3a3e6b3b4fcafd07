package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/VendorHub/internal/core"
)

// successResponse is the envelope of every successful JSON response.
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// writeData writes {success:true, data} with status 200.
func writeData(w http.ResponseWriter, data any) {
	writeStatusJSON(w, http.StatusOK, successResponse{Success: true, Data: data})
}

// writeCreated writes {success:true, data} with status 201.
func writeCreated(w http.ResponseWriter, data any) {
	writeStatusJSON(w, http.StatusCreated, successResponse{Success: true, Data: data})
}

// writeWorkbook sends an xlsx attachment.
func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", core.MIMEXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// actor returns the authenticated caller.
func actor(r *http.Request) core.Actor {
	return core.ActorFromContext(r.Context())
}

// decodeJSON reads a small JSON body into v. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 64*1024))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errBadJSON
	}
	return nil
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// parseBoolParam parses a boolean query parameter. Unset or unparsable
// values give defaultVal.
func parseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := strings.TrimSpace(r.URL.Query().Get(name))
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

// tierValue accepts a tier given as a JSON string ("tier2") or number (2).
type tierValue string

func (t *tierValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = tierValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = tierValue(n.String())
	return nil
}
