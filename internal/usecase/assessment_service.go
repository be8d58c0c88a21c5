package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nutriscan/backend/internal/domain"
	"github.com/rs/zerolog"
)

// Package-level compiled regex patterns for performance
var (
	nonDigitRegex      = regexp.MustCompile(`[^0-9]`)
	unsafeFilenameRune = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// AssessmentServiceConfig holds configuration for the assessment service
type AssessmentServiceConfig struct {
	ReasoningTimeout time.Duration
}

// AssessmentDeps are the collaborators of the assessment service.
// Cache and Uploads are optional.
type AssessmentDeps struct {
	Products  domain.ProductFetcher
	Reasoning domain.ReasoningClient
	Decoder   domain.BarcodeDecoder
	Cache     domain.ProductCache
	Uploads   domain.UploadStore
}

// AssessmentService runs a submission through barcode resolution, product
// lookup, prompt composition, the reasoning call and reconciliation
type AssessmentService struct {
	products         domain.ProductFetcher
	reasoning        domain.ReasoningClient
	decoder          domain.BarcodeDecoder
	cache            domain.ProductCache
	uploads          domain.UploadStore
	logger           *zerolog.Logger
	reasoningTimeout time.Duration
}

// NewAssessmentService creates a new assessment service with dependencies
func NewAssessmentService(deps AssessmentDeps, logger *zerolog.Logger, config AssessmentServiceConfig) *AssessmentService {
	timeout := config.ReasoningTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &AssessmentService{
		products:         deps.Products,
		reasoning:        deps.Reasoning,
		decoder:          deps.Decoder,
		cache:            deps.Cache,
		uploads:          deps.Uploads,
		logger:           logger,
		reasoningTimeout: timeout,
	}
}

// Assess produces the display result for a submission.
// Flow: resolve barcode -> lookup product -> compose prompt -> reasoning call -> reconcile
//
// Input and not-found errors return a nil result. Reasoning and mapping
// failures return the fallback result together with the error.
func (s *AssessmentService) Assess(ctx context.Context, request *domain.AssessmentRequest) (*domain.DisplayResult, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	barcode, err := s.ResolveBarcode(ctx, request)
	if err != nil {
		return nil, err
	}

	product, err := s.LookupProduct(ctx, barcode)
	if err != nil {
		return nil, err
	}

	prompt := ComposePrompt(request.Profile, product)
	s.logger.Debug().Str("barcode", barcode).Int("prompt_chars", len(prompt)).Msg("sending prompt to reasoning service")

	text, callErr := s.complete(ctx, prompt)
	var response *domain.ReasoningResponse
	if callErr == nil {
		response, callErr = ParseReasoningResponse(text)
	}

	result, err := Reconcile(product, response, callErr)
	if err != nil {
		s.logger.Warn().Err(err).Str("barcode", barcode).Str("stage", result.Notice.Stage).Msg("returning fallback assessment")
		return result, err
	}

	s.logger.Info().Str("barcode", barcode).Int("nutrition_score", result.NutritionScore).Int("health_score", result.HealthScore).Msg("assessment completed")
	return result, nil
}

// ResolveBarcode returns the barcode of a submission. An uploaded image takes
// precedence over a typed barcode.
func (s *AssessmentService) ResolveBarcode(ctx context.Context, request *domain.AssessmentRequest) (string, error) {
	if request.Upload != nil && (request.Upload.Filename != "" || len(request.Upload.Data) > 0) {
		return s.DecodeUpload(ctx, request.Upload)
	}

	typed := strings.TrimSpace(request.Barcode)
	if typed == "" {
		return "", domain.ErrNoInput
	}
	barcode := digitsOnly(typed)
	if barcode == "" {
		return "", fmt.Errorf("%w: barcode %q has no digits", domain.ErrInvalidRequest, typed)
	}
	return barcode, nil
}

// DecodeUpload validates an uploaded image, archives it and decodes its single barcode
func (s *AssessmentService) DecodeUpload(ctx context.Context, upload *domain.Upload) (string, error) {
	if upload == nil || upload.Filename == "" || len(upload.Data) == 0 {
		return "", fmt.Errorf("%w: no file provided", domain.ErrNoInput)
	}

	filename := sanitizeFilename(upload.Filename)
	if !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFile, filepath.Ext(filename))
	}
	mime := mimetype.Detect(upload.Data)
	if !mime.Is("image/png") && !mime.Is("image/jpeg") {
		return "", fmt.Errorf("%w: detected %s", domain.ErrUnsupportedFile, mime.String())
	}

	s.archiveUpload(ctx, filename, upload.Data, mime.String())

	img, _, err := image.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		return "", fmt.Errorf("%w: unreadable image: %v", domain.ErrUnsupportedFile, err)
	}

	if s.decoder == nil {
		return "", fmt.Errorf("%w: barcode decoding is not configured", domain.ErrNoBarcode)
	}
	codes, err := s.decoder.Decode(img)
	if err != nil {
		if errors.Is(err, domain.ErrNoBarcode) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrNoBarcode, err)
	}

	barcodes := make([]string, 0, len(codes))
	for _, code := range codes {
		if digits := digitsOnly(code); digits != "" {
			barcodes = append(barcodes, digits)
		}
	}
	switch len(barcodes) {
	case 0:
		return "", domain.ErrNoBarcode
	case 1:
		return barcodes[0], nil
	default:
		return "", fmt.Errorf("%w: %d barcodes", domain.ErrMultipleBarcodes, len(barcodes))
	}
}

// LookupProduct returns the product profile for a barcode.
// Flow: check cache -> fetch from the product database -> build profile -> cache
func (s *AssessmentService) LookupProduct(ctx context.Context, barcode string) (*domain.ProductProfile, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, barcode); err == nil && cached != nil {
			s.logger.Debug().Str("barcode", barcode).Msg("product cache hit")
			return cached, nil
		}
	}

	record, err := s.products.FetchProduct(ctx, barcode)
	if err != nil {
		if !domain.IsNotFound(err) {
			err = fmt.Errorf("%w: %v", domain.ErrProductAPIFailure, err)
		}
		return nil, &domain.LookupError{Barcode: barcode, Err: err}
	}

	profile, err := BuildProductProfile(record, barcode)
	if err != nil {
		return nil, &domain.LookupError{Barcode: barcode, Err: err}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, barcode, profile); err != nil {
			// Log but don't fail if caching fails
			s.logger.Warn().Err(err).Str("barcode", barcode).Msg("failed to cache product")
		}
	}

	return profile, nil
}

// complete calls the reasoning service under the configured timeout
func (s *AssessmentService) complete(ctx context.Context, prompt string) (string, error) {
	if s.reasoning == nil {
		return "", fmt.Errorf("%w: reasoning service is not configured", domain.ErrReasoningUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, s.reasoningTimeout)
	defer cancel()

	text, err := s.reasoning.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrReasoningUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrReasoningUnavailable, err)
	}
	return text, nil
}

// archiveUpload stores the upload under a unique name. Failures are logged only.
func (s *AssessmentService) archiveUpload(ctx context.Context, filename string, data []byte, contentType string) {
	if s.uploads == nil {
		return
	}
	name := fmt.Sprintf("%s_%s", strings.ReplaceAll(uuid.NewString(), "-", ""), filename)
	location, err := s.uploads.Save(ctx, name, data, contentType)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", name).Msg("failed to archive upload")
		return
	}
	s.logger.Debug().Str("location", location).Msg("upload archived")
}

func digitsOnly(s string) string {
	return nonDigitRegex.ReplaceAllString(s, "")
}

// sanitizeFilename reduces a client filename to a safe base name
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFilenameRune.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	return name
}
