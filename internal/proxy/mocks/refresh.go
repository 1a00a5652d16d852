package mocks

import (
	"context"

	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type LineSource struct {
	mock.Mock
}

func NewLineSource(t testingT) *LineSource {
	m := &LineSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *LineSource) Fetch(ctx context.Context) ([]proxy.Line, []error) {
	args := m.Called(ctx)
	var lines []proxy.Line
	if v := args.Get(0); v != nil {
		lines = v.([]proxy.Line)
	}
	var errs []error
	if v := args.Get(1); v != nil {
		errs = v.([]error)
	}
	return lines, errs
}

type CandidateVerifier struct {
	mock.Mock
}

func NewCandidateVerifier(t testingT) *CandidateVerifier {
	m := &CandidateVerifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CandidateVerifier) Execute(ctx context.Context, candidates []proxy.Candidate) []proxy.Outcome {
	args := m.Called(ctx, candidates)
	switch v := args.Get(0).(type) {
	case func(context.Context, []proxy.Candidate) []proxy.Outcome:
		return v(ctx, candidates)
	case []proxy.Outcome:
		return v
	default:
		return nil
	}
}

type ResultWriter struct {
	mock.Mock
}

func NewResultWriter(t testingT) *ResultWriter {
	m := &ResultWriter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ResultWriter) Write(ctx context.Context, rs proxy.ResultSet) error {
	args := m.Called(ctx, rs)
	return args.Error(0)
}

var (
	_ proxy.LineSource        = (*LineSource)(nil)
	_ proxy.CandidateVerifier = (*CandidateVerifier)(nil)
	_ proxy.ResultWriter      = (*ResultWriter)(nil)
)
