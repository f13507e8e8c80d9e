package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssekandi/psms-api/internal/models"
)

func TestCanonicalExamName(t *testing.T) {
	cases := map[string]string{
		"End_term":      "End term",
		"End  Term":     "End Term",
		"  Midterm  ":   "Midterm",
		"Mock_Exam_Two": "Mock Exam Two",
		"Beginning":     "Beginning",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalExamName(in))
	}
}

func TestExamRepositoryFindByDescriptorNormalizesName(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "term", "year"}).
		AddRow(int64(4), "End term", 2, 2025)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, term, year FROM exams
        WHERE LOWER(name) = LOWER($1) AND term = $2 AND year = $3`)).
		WithArgs("End term", 2, 2025).
		WillReturnRows(rows)

	exam, err := repo.FindByDescriptor(context.Background(), nil, "End_term", 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(4), exam.ID)
	assert.Equal(t, "End term", exam.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryCreateStoresCanonicalName(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO exams (name, term, year) VALUES ($1, $2, $3) RETURNING id`)).
		WithArgs("Mock Exam", 1, 2025).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	exam := &models.Exam{Name: "Mock_Exam", Term: 1, Year: 2025}
	require.NoError(t, repo.Create(context.Background(), nil, exam))
	assert.Equal(t, int64(9), exam.ID)
	assert.Equal(t, "Mock Exam", exam.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
