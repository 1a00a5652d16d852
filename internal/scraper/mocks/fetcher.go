package mocks

import (
	"context"

	"github.com/JulianoL13/proxy-list-refresher/internal/scraper"
	"github.com/stretchr/testify/mock"
)

type Fetcher struct {
	mock.Mock
}

func NewFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *Fetcher {
	m := &Fetcher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Fetcher) FetchLines(ctx context.Context, source scraper.Source) ([]string, error) {
	args := m.Called(ctx, source)
	var lines []string
	if v := args.Get(0); v != nil {
		lines = v.([]string)
	}
	return lines, args.Error(1)
}
