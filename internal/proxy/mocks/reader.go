package mocks

import (
	"context"

	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
	"github.com/stretchr/testify/mock"
)

type Reader struct {
	mock.Mock
}

func NewReader(t testingT) *Reader {
	m := &Reader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Reader) GetWorking(ctx context.Context, bucket string, cursor, limit int) ([]proxy.Entry, int, int, error) {
	args := m.Called(ctx, bucket, cursor, limit)
	var entries []proxy.Entry
	if v := args.Get(0); v != nil {
		entries = v.([]proxy.Entry)
	}
	return entries, args.Int(1), args.Int(2), args.Error(3)
}

func (m *Reader) GetSnapshotInfo(ctx context.Context) (proxy.SnapshotInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(proxy.SnapshotInfo), args.Error(1)
}

var _ proxy.Reader = (*Reader)(nil)
