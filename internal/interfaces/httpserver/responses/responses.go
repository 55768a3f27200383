package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/intake"
)

// ErrorResponse is the error envelope returned to clients.
type ErrorResponse struct {
	Status  string              `json:"status"`
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message"`
	Fields  []intake.FieldError `json:"fields,omitempty"`
}

var codeToStatus = map[string]int{
	intake.CodeValidation:            http.StatusBadRequest,
	intake.CodeCaseNotFound:          http.StatusNotFound,
	intake.CodeCaseBusy:              http.StatusConflict,
	intake.CodeContractAlreadyExists: http.StatusConflict,
	intake.CodeMissingIdentityFields: http.StatusUnprocessableEntity,
	intake.CodeScoreInsufficient:     http.StatusUnprocessableEntity,
	intake.CodeCollaboratorFailure:   http.StatusInternalServerError,
}

// HandleError maps an intake error onto its HTTP status and aborts the
// request. Untyped errors become a plain 500.
func HandleError(reqCtx *gin.Context, err error, fallbackMessage string) {
	var domainErr *intake.Error
	if errors.As(err, &domainErr) {
		status, ok := codeToStatus[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		reqCtx.AbortWithStatusJSON(status, ErrorResponse{
			Status:  "error",
			Code:    domainErr.Code,
			Message: domainErr.Message,
			Fields:  domainErr.Fields,
		})
		return
	}

	if casefile.IsNotFound(err) {
		reqCtx.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
			Status:  "error",
			Code:    intake.CodeCaseNotFound,
			Message: err.Error(),
		})
		return
	}

	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Status:  "error",
		Message: fallbackMessage,
	})
}

// BadRequest aborts with a validation-shaped 400 for malformed request
// bodies and query params.
func BadRequest(reqCtx *gin.Context, message string) {
	reqCtx.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Status:  "error",
		Code:    intake.CodeValidation,
		Message: message,
	})
}
