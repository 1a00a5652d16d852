package proxy

import "context"

type GetSummaryUseCase struct {
	reader Reader
}

func NewGetSummaryUseCase(reader Reader) *GetSummaryUseCase {
	return &GetSummaryUseCase{reader: reader}
}

func (uc *GetSummaryUseCase) Execute(ctx context.Context) (SnapshotInfo, error) {
	return uc.reader.GetSnapshotInfo(ctx)
}
