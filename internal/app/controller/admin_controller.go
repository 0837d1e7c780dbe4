package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/storage"
)

const maxImportSize = 10 << 20

var importContentTypes = []string{
	xlsxMIME,
	"application/octet-stream",
}

type AdminController struct {
	catalogService service.CatalogService
	importer       *service.CatalogImporter
}

func NewAdminController(catalogService service.CatalogService, importer *service.CatalogImporter) *AdminController {
	return &AdminController{
		catalogService: catalogService,
		importer:       importer,
	}
}

type SetAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// ImportCatalog loads products, groups and values from an uploaded workbook
// POST /api/v1/admin/catalog/import (multipart, field "file")
func (ctrl *AdminController) ImportCatalog(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warn("Catalog import without file", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "업로드할 파일을 선택해주세요")
		return
	}

	if err := storage.ValidateFileSize(fileHeader.Size, maxImportSize); err != nil {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "파일 크기는 10MB 이하여야 합니다")
		return
	}
	if err := storage.ValidateContentType(fileHeader.Header.Get("Content-Type"), importContentTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "xlsx 파일만 업로드할 수 있습니다")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded catalog", err)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "파일을 읽을 수 없습니다")
		return
	}
	defer file.Close()

	products, report, err := ctrl.importer.ReadXLSX(file)
	if err != nil {
		log.Warn("Catalog workbook rejected", map[string]interface{}{
			"filename": fileHeader.Filename,
			"error":    err.Error(),
		})
		if errors.Is(err, service.ErrMissingColumns) || errors.Is(err, service.ErrEmptyWorkbook) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, err.Error())
			return
		}
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "xlsx 파일을 읽을 수 없습니다")
		return
	}

	if err := ctrl.importer.Import(c.Request.Context(), products); err != nil {
		respondServiceError(c, err, "import catalog")
		return
	}

	log.Info("Catalog imported", map[string]interface{}{
		"filename": fileHeader.Filename,
		"products": report.Products,
		"skipped":  report.Skipped,
	})

	c.JSON(http.StatusCreated, gin.H{
		"report": report,
	})
}

// SetValueAvailability turns a feature value on or off
// PUT /api/v1/admin/feature-values/:id/availability
func (ctrl *AdminController) SetValueAvailability(c *gin.Context) {
	valueID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "available 값이 필요합니다")
		return
	}

	value, err := ctrl.catalogService.SetValueAvailability(c.Request.Context(), valueID, *req.Available)
	if err != nil {
		respondServiceError(c, err, "update feature value")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"value": value,
	})
}
