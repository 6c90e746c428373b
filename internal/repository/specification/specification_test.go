package specification

import (
	"testing"
	"time"

	"docqa-be/internal/entity"
	"docqa-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=test dbname=test sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestSpecifications_BuildSQL(t *testing.T) {
	db := dryRunDB(t)

	tests := []struct {
		name  string
		specs []Specification
		want  []string
	}{
		{
			name:  "owner and session",
			specs: []Specification{ByUserID{UserID: 7, Table: "questions"}, BySessionID{SessionID: "s1"}},
			want:  []string{"questions.user_id = 7", "questions.session_id = 's1'"},
		},
		{
			name:  "unanswered and old",
			specs: []Specification{Unanswered{}, CreatedBefore{At: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}},
			want:  []string{"NOT EXISTS (SELECT 1 FROM answers", "created_at <"},
		},
		{
			name:  "ordering and limit",
			specs: []Specification{OrderBy{Field: "created_at", Desc: true}, Pagination{Limit: 50}},
			want:  []string{"ORDER BY created_at DESC", "LIMIT 50"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var rows []model.Question
				return Apply(tx.Model(&model.Question{}), tt.specs...).Find(&rows)
			})
			for _, fragment := range tt.want {
				assert.Contains(t, sql, fragment)
			}
		})
	}
}

func TestByFileTypes(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []model.File
		return ByFileTypes{Types: entity.SupportedFileTypes}.Apply(tx.Model(&model.File{})).Find(&rows)
	})
	assert.Contains(t, sql, "file_type IN ('pdf','docx')")
}
