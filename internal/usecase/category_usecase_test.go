package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/usecase"
	"github.com/iho/masjid-console/internal/usecase/mocks"
)

func TestCategoryUseCase_ListNormalizesAndCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	lister := mocks.NewMockCategoryLister(ctrl)
	cache := mocks.NewMockCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), "jenis_transaksi").Return(nil, nil)
	lister.EXPECT().ListCategories(gomock.Any(), "tok").Return([]domain.CategoryRecord{
		{ID: "1", Label: "Kas Masjid"},
		{ID: "2", Label: "Donatur Tetap", FundingSource: "bank"},
		{ID: "3", Label: "Infaq via Rekening"},
	}, nil)
	cache.EXPECT().Set(gomock.Any(), "jenis_transaksi", gomock.Any(), gomock.Any()).Return(nil)

	uc := usecase.NewCategoryUseCase(lister, cache, 0, zerolog.Nop())

	got, err := uc.List(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		source   domain.FundingSource
		inferred bool
	}{
		{domain.FundingCash, true},
		{domain.FundingBank, false},
		{domain.FundingBank, true},
	}
	for i, w := range want {
		if got[i].FundingSource != w.source || got[i].Inferred != w.inferred {
			t.Errorf("category %d = %+v", i, got[i])
		}
	}
}

func TestCategoryUseCase_ListFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	lister := mocks.NewMockCategoryLister(ctrl)
	cache := mocks.NewMockCache(ctrl)

	data, _ := json.Marshal([]domain.TransactionCategory{{ID: "1", Label: "Kas", FundingSource: domain.FundingCash}})
	cache.EXPECT().Get(gomock.Any(), "jenis_transaksi").Return(data, nil).Times(2)

	uc := usecase.NewCategoryUseCase(lister, cache, 0, zerolog.Nop())

	got, err := uc.Resolve(context.Background(), "tok", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Label != "Kas" {
		t.Fatalf("unexpected category %+v", got)
	}

	if _, err := uc.Resolve(context.Background(), "tok", "404"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryUseCase_WithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	lister := mocks.NewMockCategoryLister(ctrl)

	lister.EXPECT().ListCategories(gomock.Any(), "tok").Return(nil, errors.New("down"))

	uc := usecase.NewCategoryUseCase(lister, nil, 0, zerolog.Nop())
	if _, err := uc.List(context.Background(), "tok"); err == nil {
		t.Fatal("expected error")
	}
}
