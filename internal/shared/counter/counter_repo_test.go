package counter

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "EMP-000001", Format("EMP", 1))
	assert.Equal(t, "EMP-123456", Format("EMP", 123456))
	assert.Equal(t, "EMP-1234567", Format("EMP", 1234567))
}

func TestGetNextValue(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)

	mock.ExpectQuery("INSERT INTO company_counters").
		WithArgs("company-1", TypeEmployee).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(7))

	v, err := NewRepository(gdb).GetNextValue(context.Background(), "company-1", TypeEmployee)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), v)
	assert.NoError(t, mock.ExpectationsWereMet())
}
