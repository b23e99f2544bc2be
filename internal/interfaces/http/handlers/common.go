package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/interfaces/http/middleware"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// ErrorBody is the error payload of every failed request.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// respondError maps err to its HTTP status. Internal failures are masked.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	body := ErrorBody{Code: string(code), Message: err.Error(), RequestID: middleware.GetRequestID(c)}
	var ae *errors.AppError
	if errors.As(err, &ae) {
		body.Message, body.Detail = ae.Message, ae.Detail
	}
	if status == http.StatusInternalServerError {
		body = ErrorBody{Code: string(errors.ErrCodeInternal), Message: "internal server error", RequestID: body.RequestID}
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

func badRequest(c *gin.Context, format string, args ...any) {
	respondError(c, errors.Newf(errors.ErrCodeBadRequest, format, args...))
}

func optionalFloat(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.Newf(errors.ErrCodeBadRequest, "%s must be a number", name)
	}
	return &v, nil
}

func optionalInt(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.Newf(errors.ErrCodeBadRequest, "%s must be an integer", name)
	}
	return &v, nil
}

// parsePlanetQuery reads the list filters: q, starType, maxDistance,
// minScore, page and limit.
func parsePlanetQuery(c *gin.Context) (planet.Query, error) {
	q := planet.Query{
		Search:   c.Query("q"),
		StarType: c.Query("starType"),
	}
	var err error
	if q.MaxDistance, err = optionalFloat(c, "maxDistance"); err != nil {
		return q, err
	}
	if q.MinScore, err = optionalInt(c, "minScore"); err != nil {
		return q, err
	}
	page, err := optionalInt(c, "page")
	if err != nil {
		return q, err
	}
	limit, err := optionalInt(c, "limit")
	if err != nil {
		return q, err
	}
	if page != nil {
		if *page < 1 {
			return q, errors.New(errors.ErrCodeBadRequest, "page must be at least 1")
		}
		q.Page = *page
	}
	if limit != nil {
		if *limit < 1 {
			return q, errors.New(errors.ErrCodeBadRequest, "limit must be at least 1")
		}
		q.Limit = *limit
	}
	return q, nil
}

// splitList accepts both repeated parameters and comma-separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

//Personal.AI order the ending
