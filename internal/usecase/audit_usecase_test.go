package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/usecase"
	"github.com/iho/masjid-console/internal/usecase/mocks"
)

func TestAuditUseCase_Record(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAuditRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	idGen.EXPECT().Generate().Return("01HAUDIT")
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, log *domain.AuditLog) error {
		if log.ID != "01HAUDIT" || log.Status != domain.AuditStatusSuccess || log.CreatedAt.IsZero() {
			t.Fatalf("unexpected log %+v", log)
		}
		return nil
	})

	uc := usecase.NewAuditUseCase(repo, idGen, zerolog.Nop())
	uc.Record(context.Background(), &domain.AuditLog{Action: domain.AuditActionTransactionCreate, ResourceType: "transaction", ResourceID: "5"})
}

func TestAuditUseCase_RecordSwallowsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAuditRepository(ctrl)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	uc := usecase.NewAuditUseCase(repo, mocks.NewMockIDGenerator(ctrl), zerolog.Nop())
	uc.Record(context.Background(), &domain.AuditLog{ID: "given", Action: domain.AuditActionUserLogin})
}

func TestAuditUseCase_ListClampsPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAuditRepository(ctrl)

	repo.EXPECT().List(gomock.Any(), domain.AuditFilter{Action: "auth.login", Limit: 200, Offset: 0}).Return(nil, nil)

	uc := usecase.NewAuditUseCase(repo, mocks.NewMockIDGenerator(ctrl), zerolog.Nop())
	if _, err := uc.List(context.Background(), domain.AuditFilter{Action: "auth.login", Limit: 5000, Offset: -1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
