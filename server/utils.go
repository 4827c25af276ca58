package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"

	"social/feeds"
	"social/utils"
)

const maxBodyBytes = 1 << 20

func sendError(w http.ResponseWriter, errorCode int, message string) {
	log.Info(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errorCode)
	resp := map[string]string{
		"error": message,
	}
	jsonResp := utils.ToJson(resp)
	w.Write(jsonResp)
}

func sendJson(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(utils.ToJson(value))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func getQueryItem(values url.Values, key string) string {
	value := values[key]
	if len(value) == 1 {
		return value[0]
	}
	return ""
}

// parseQueryParams reads cursor and limit. Out-of-range or unparsable
// limits are clamped by the assembler, never rejected.
func parseQueryParams(r *http.Request) feeds.QueryParams {
	queryParams := r.URL.Query()
	return feeds.QueryParams{
		Cursor: getQueryItem(queryParams, "cursor"),
		Limit:  utils.IntFromString(getQueryItem(queryParams, "limit"), 0),
	}
}
