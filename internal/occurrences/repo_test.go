package occurrences

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
)

func setupOccurrencesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS occurrences (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  driver_id TEXT NOT NULL,
  route_id TEXT,
  type TEXT NOT NULL,
  description TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestCreateAndListForRoute(t *testing.T) {
	db := setupOccurrencesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	routeID := uuid.New()
	first := &models.Occurrence{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		DriverID:    uuid.New(),
		RouteID:     &routeID,
		Type:        enums.OccurrenceBreakdown,
		Description: "flat tire on the highway",
	}
	require.NoError(t, repo.Create(ctx, first))

	other := uuid.New()
	second := &models.Occurrence{
		ID:          uuid.New(),
		TenantID:    first.TenantID,
		DriverID:    first.DriverID,
		RouteID:     &other,
		Type:        enums.OccurrenceTheft,
		Description: "cargo stolen at stop 3",
	}
	require.NoError(t, repo.Create(ctx, second))

	listed, err := repo.ListForRoute(ctx, routeID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, enums.OccurrenceBreakdown, listed[0].Type)
}
