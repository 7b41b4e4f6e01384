package route

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/griffnb/nest-swag/internal/domain"
)

// statusCatalog returns the success code followed by the documented error
// code for a verb.
func statusCatalog(v Verb) []int {
	switch v {
	case VerbGet, VerbPut, VerbPatch, VerbDelete:
		return []int{http.StatusOK, http.StatusNotFound}
	case VerbPost:
		return []int{http.StatusCreated, http.StatusBadRequest}
	}
	return []int{http.StatusOK}
}

// httpStatusNames maps HttpStatus enum members to codes.
var httpStatusNames = map[string]int{
	"OK":                    http.StatusOK,
	"CREATED":               http.StatusCreated,
	"ACCEPTED":              http.StatusAccepted,
	"NO_CONTENT":            http.StatusNoContent,
	"MOVED_PERMANENTLY":     http.StatusMovedPermanently,
	"FOUND":                 http.StatusFound,
	"NOT_MODIFIED":          http.StatusNotModified,
	"BAD_REQUEST":           http.StatusBadRequest,
	"UNAUTHORIZED":          http.StatusUnauthorized,
	"FORBIDDEN":             http.StatusForbidden,
	"NOT_FOUND":             http.StatusNotFound,
	"CONFLICT":              http.StatusConflict,
	"UNPROCESSABLE_ENTITY":  http.StatusUnprocessableEntity,
	"INTERNAL_SERVER_ERROR": http.StatusInternalServerError,
}

// httpCode reads an @HttpCode(n) override. It accepts numbers and
// HttpStatus.NAME members.
func httpCode(method domain.Method) (int, bool) {
	ann, ok := method.Annotation("HttpCode")
	if !ok {
		return 0, false
	}
	arg := strings.TrimSpace(ann.Arg(0))
	if code, err := strconv.Atoi(arg); err == nil && code >= 100 && code < 600 {
		return code, true
	}
	if idx := strings.LastIndex(arg, "."); idx >= 0 {
		arg = arg[idx+1:]
	}
	code, ok := httpStatusNames[arg]
	return code, ok
}
