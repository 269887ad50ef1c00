package memstore

import (
	"testing"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/nutridiary/backend/internal/infrastructure/storetest"
)

func TestCatalogStore(t *testing.T) {
	storetest.CatalogStore(t, func(t *testing.T) domain.CatalogStore { return NewCatalogStore() })
}

func TestDiaryStore(t *testing.T) {
	storetest.DiaryStore(t, func(t *testing.T) domain.DiaryStore { return NewDiaryStore() })
}

func TestGoalsStore(t *testing.T) {
	storetest.GoalsStore(t, func(t *testing.T) domain.GoalsStore { return NewGoalsStore() })
}
