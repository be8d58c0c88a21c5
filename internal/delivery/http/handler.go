package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/nutriscan/backend/internal/domain"
	"github.com/rs/zerolog"
)

const (
	profileSessionKey = "profile"
	defaultMaxUpload  = 10 << 20
)

// Assessor is the use case the handlers drive
type Assessor interface {
	Assess(ctx context.Context, request *domain.AssessmentRequest) (*domain.DisplayResult, error)
	LookupProduct(ctx context.Context, barcode string) (*domain.ProductProfile, error)
}

// HandlerConfig holds request-level settings for the handlers
type HandlerConfig struct {
	SessionName    string
	MaxUploadBytes int64
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	assessor    Assessor
	sessions    sessions.Store
	sessionName string
	maxUpload   int64
	logger      *zerolog.Logger
}

// NewHandler creates a new HTTP handler.
// A nil session store disables profile persistence.
func NewHandler(assessor Assessor, store sessions.Store, logger *zerolog.Logger, cfg HandlerConfig) *Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.SessionName == "" {
		cfg.SessionName = "nutriscan_profile"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	return &Handler{
		assessor:    assessor,
		sessions:    store,
		sessionName: cfg.SessionName,
		maxUpload:   cfg.MaxUploadBytes,
		logger:      logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutriscan-backend",
		"version": "1.0.0",
	})
}

// CreateAssessment handles multipart scan submissions: the dietary profile
// form fields plus a photo or a typed barcode
func (h *Handler) CreateAssessment(c *gin.Context) {
	if h.assessor == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "assessment service not configured"})
		return
	}

	var profile domain.UserDietaryProfile
	if err := c.ShouldBind(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid form: %v", err)})
		return
	}
	profile = profile.Trimmed().WithFallback(h.savedProfile(c))
	h.saveProfile(c, profile)

	upload, err := h.readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	barcode := strings.TrimSpace(c.PostForm("manual-barcode"))
	if barcode == "" {
		barcode = strings.TrimSpace(c.PostForm("selected_barcode"))
	}

	request := &domain.AssessmentRequest{
		Profile: profile,
		Barcode: barcode,
		Upload:  upload,
	}

	result, err := h.assessor.Assess(c.Request.Context(), request)
	if err != nil {
		if result != nil {
			// soft failure: the fallback result is still shown
			c.JSON(http.StatusOK, gin.H{
				"data":    result,
				"warning": softFailureMessage(result.Notice, err),
				"stage":   noticeStage(result.Notice),
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// GetProduct returns the normalised product profile for a barcode
func (h *Handler) GetProduct(c *gin.Context) {
	if h.assessor == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "assessment service not configured"})
		return
	}

	barcode := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, c.Param("barcode"))
	if barcode == "" {
		respondError(c, fmt.Errorf("%w: barcode must contain digits", domain.ErrInvalidRequest))
		return
	}

	product, err := h.assessor.LookupProduct(c.Request.Context(), barcode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// GetProfile returns the dietary profile stored in the session
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.savedProfile(c)})
}

// PutProfile replaces the dietary profile stored in the session
func (h *Handler) PutProfile(c *gin.Context) {
	var profile domain.UserDietaryProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid profile: %v", err)})
		return
	}
	profile = profile.Trimmed()

	if !h.saveProfile(c, profile) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile session not available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

// readUpload returns the "photo" file, or nil when none was sent
func (h *Handler) readUpload(c *gin.Context) (*domain.Upload, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if header.Filename == "" && header.Size == 0 {
		return nil, nil
	}
	if header.Size > h.maxUpload {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrUnsupportedFile, h.maxUpload)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return &domain.Upload{Filename: header.Filename, Data: data}, nil
}

func (h *Handler) savedProfile(c *gin.Context) domain.UserDietaryProfile {
	var profile domain.UserDietaryProfile
	if h.sessions == nil {
		return profile
	}
	session, err := h.sessions.Get(c.Request, h.sessionName)
	if err != nil {
		// tampered or stale cookie: start over with a fresh session
		h.logger.Debug().Err(err).Msg("discarding profile session")
		return profile
	}
	raw, ok := session.Values[profileSessionKey].(string)
	if !ok {
		return profile
	}
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		h.logger.Warn().Err(err).Msg("corrupt profile in session")
		return domain.UserDietaryProfile{}
	}
	return profile
}

func (h *Handler) saveProfile(c *gin.Context, profile domain.UserDietaryProfile) bool {
	if h.sessions == nil {
		return false
	}
	session, _ := h.sessions.Get(c.Request, h.sessionName)
	if session == nil {
		return false
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return false
	}
	session.Values[profileSessionKey] = string(raw)
	if err := session.Save(c.Request, c.Writer); err != nil {
		h.logger.Warn().Err(err).Msg("failed to save profile session")
		return false
	}
	return true
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsInputError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   err.Error(),
			"barcode": domain.FailedBarcode(err),
		})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func softFailureMessage(notice *domain.Notice, err error) string {
	if notice != nil && notice.Stage == domain.StageMapping {
		return "Error while mapping data: " + err.Error()
	}
	return "Sorry, AI insights not available: " + err.Error()
}

func noticeStage(notice *domain.Notice) string {
	if notice == nil {
		return domain.StageReasoning
	}
	return notice.Stage
}
