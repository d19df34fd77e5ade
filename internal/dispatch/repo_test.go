package dispatch

import (
	"context"
	"errors"
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

func setupDispatchTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS tenants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  messaging_provider TEXT NOT NULL DEFAULT 'whatsapp',
  greeting_template TEXT,
  supervisor_phone TEXT,
  salesperson_phone TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestFindTenant(t *testing.T) {
	db := setupDispatchTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	supervisor := "5511900000001"
	tenant := &models.Tenant{
		ID:                uuid.New(),
		Name:              "Distribuidora Aurora",
		MessagingProvider: enums.ProviderTelegram,
		SupervisorPhone:   &supervisor,
	}
	require.NoError(t, db.Create(tenant).Error)

	found, err := repo.FindTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.Name, found.Name)
	assert.Equal(t, enums.ProviderTelegram, found.MessagingProvider)
	require.NotNil(t, found.SupervisorPhone)
	assert.Equal(t, supervisor, *found.SupervisorPhone)

	_, err = repo.FindTenant(ctx, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
