package mcp

import (
	"context"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/sources"
)

// mockKBService is a mock implementation of driving.KBService.
type mockKBService struct {
	bundle  *domain.Bundle
	results []domain.Result
	debug   domain.KBDebug
	view    sources.CompactView
	mode    domain.KBMode
	loadErr error
	err     error
}

func (m *mockKBService) LoadKB(_ context.Context, text, name, updatedAt string) (*domain.Bundle, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.bundle != nil {
		return m.bundle, nil
	}
	return &domain.Bundle{KBName: name, KBUpdatedAt: updatedAt, ChunksTotal: len(text) / 100}, nil
}

func (m *mockKBService) Retrieve(_ context.Context, _ string, k int) ([]domain.Result, error) {
	if k < 0 {
		return nil, domain.ErrInvalidInput
	}
	return m.results, m.err
}

func (m *mockKBService) Bundle() *domain.Bundle {
	return m.bundle
}

func (m *mockKBService) CompactSources(_ []domain.Result, maxSources int) (sources.CompactView, error) {
	if maxSources < 0 {
		return sources.CompactView{}, domain.ErrInvalidInput
	}
	return m.view, nil
}

func (m *mockKBService) LastDebug() domain.KBDebug {
	return m.debug
}

func (m *mockKBService) Mode() domain.KBMode {
	if m.mode == "" {
		return domain.KBModeGeneral
	}
	return m.mode
}

func (m *mockKBService) SetMode(mode domain.KBMode) error {
	m.mode = mode
	return m.err
}
