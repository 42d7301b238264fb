package service

import (
	"context"
	"fmt"
	"strings"

	"password-dashboard/internal/domain"
	"password-dashboard/internal/repository"
)

// CaptureService accepts (url, password) pairs pushed by the browser extension.
type CaptureService interface {
	Capture(ctx context.Context, webURL, password string) (*domain.CapturedCredential, error)
}

type captureService struct {
	captures repository.CaptureRepository
}

func NewCaptureService(captures repository.CaptureRepository) CaptureService {
	return &captureService{captures: captures}
}

func (s *captureService) Capture(ctx context.Context, webURL, password string) (*domain.CapturedCredential, error) {
	webURL = strings.TrimSpace(webURL)

	ve := &ValidationError{}
	checkRequired(ve, "web_url", webURL)
	checkRequired(ve, "password", password)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	cred := &domain.CapturedCredential{
		WebURL:   webURL,
		Password: password,
	}
	id, err := s.captures.Create(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("save captured password: %w", err)
	}
	cred.ID = id
	return cred, nil
}
