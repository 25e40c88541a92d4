package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/html2pdf/converter"
	"github.com/use-agent/html2pdf/models"
)

// ErrorKindHeader carries the structured kind of a failed conversion.
const ErrorKindHeader = "X-Error-Kind"

// Converter is the conversion entry point used by the handler.
type Converter interface {
	Convert(ctx context.Context, html string, opts *models.PdfOptions) (*converter.Result, error)
}

// Convert returns a handler for POST /convert.
//
// Success streams the PDF back as application/pdf. A body that fails binding
// is rejected with 400 before any browser work; a conversion failure is a 500
// with a plain-text reason and the error kind in X-Error-Kind.
func Convert(conv Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ConvertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, "Invalid request body: %s", err.Error())
			return
		}

		res, err := conv.Convert(c.Request.Context(), *req.HTML, req.PdfOptions)
		if err != nil {
			c.Header(ErrorKindHeader, string(models.KindOf(err)))
			c.String(http.StatusInternalServerError, "Error while converting to PDF: %s", err.Error())
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, res.Filename()))
		c.Data(http.StatusOK, "application/pdf", res.PDF)
	}
}
