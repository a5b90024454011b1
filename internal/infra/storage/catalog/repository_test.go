package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WashService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-WashService/internal/service/bookings"
	createBooking "github.com/m04kA/SMC-WashService/internal/usecase/create_booking"
	getAvailableSlots "github.com/m04kA/SMC-WashService/internal/usecase/get_available_slots"
)

// Репозиторий должен удовлетворять интерфейсам всех потребителей каталога
var (
	_ bookings.CatalogRepository          = (*catalog.Repository)(nil)
	_ createBooking.CatalogRepository     = (*catalog.Repository)(nil)
	_ getAvailableSlots.CatalogRepository = (*catalog.Repository)(nil)
)

func TestGetByIDs_EmptyIDs(t *testing.T) {
	repo := catalog.NewRepository(nil)

	services, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, services)
}
