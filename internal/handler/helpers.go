package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"catercost/internal/apierror"
	"catercost/internal/costing"
	"catercost/internal/middleware"
	"catercost/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string parameters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// pathID parses a uuid route parameter, answering 400 when it is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// actor names the authenticated caller for audit records.
func actor(c *gin.Context) string {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.Username
	}
	return ""
}

// writeError maps service and engine errors onto HTTP responses. Anything
// unrecognized is handed to the ErrorHandler middleware as a 500.
func writeError(c *gin.Context, err error) {
	var ee *costing.EngineError
	switch {
	case errors.As(err, &ee):
		writeEngineError(c, ee)
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(clientMessage(err, service.ErrNotFound)))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, apierror.New(clientMessage(err, service.ErrInvalidInput)))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, apierror.New(clientMessage(err, service.ErrConflict)))
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, apierror.New(clientMessage(err, service.ErrUnavailable)))
	default:
		_ = c.Error(err)
	}
}

func writeEngineError(c *gin.Context, ee *costing.EngineError) {
	status := http.StatusInternalServerError
	switch {
	case costing.IsNotFound(ee):
		status = http.StatusNotFound
	case costing.IsCycleError(ee):
		status = http.StatusConflict
	case costing.IsCallerError(ee):
		status = http.StatusBadRequest
	default:
		_ = c.Error(ee)
		return
	}
	body := apierror.WithCode(string(ee.Code), ee.Message)
	for _, id := range ee.Path {
		body.Path = append(body.Path, id.String())
	}
	c.JSON(status, body)
}

// clientMessage strips the sentinel prefix from a wrapped service error.
func clientMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
