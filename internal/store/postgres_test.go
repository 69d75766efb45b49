package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/dilg-bohol/issuance-harvester/internal/issuance"
)

func strPtr(s string) *string { return &s }

func TestPostgresEnsureSchema(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewPostgresProviderWithPool(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS republic_acts").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS joint_circulars").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	err = p.EnsureSchema(context.Background(), []string{"republic_acts", "joint_circulars"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEnsureSchemaRejectsBadTableName(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewPostgresProviderWithPool(mock)
	err = p.EnsureSchema(context.Background(), []string{"republic_acts; DROP TABLE x"})
	require.Error(t, err)
}

func TestPostgresUpsert(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewPostgresProviderWithPool(mock)

	rec := issuance.Record{
		Reference:    "RA-11032",
		Title:        "Republic Act No. 11032",
		Link:         "https://dilg.gov.ph/reports/11032",
		Date:         "May 28, 2018",
		DownloadLink: "https://dilg.gov.ph/resources/ra-11032.pdf",
		File:         "ra-11032.pdf",
	}

	mock.ExpectExec("INSERT INTO republic_acts").
		WithArgs(
			"RA-11032",
			"RA-11032",
			rec.Title,
			rec.Link,
			rec.Date,
			nil,
			rec.DownloadLink,
			rec.File,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = p.Upsert(context.Background(), "republic_acts", rec)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertStoresNullsForEmptyFields(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewPostgresProviderWithPool(mock)

	rec := issuance.Record{Title: "Opinion", Link: "https://dilg.gov.ph/lo/1", Date: "Jan 1, 2021"}

	mock.ExpectExec("INSERT INTO legal_opinions").
		WithArgs(
			rec.Key(),
			nil,
			rec.Title,
			rec.Link,
			rec.Date,
			nil,
			nil,
			nil,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = p.Upsert(context.Background(), "legal_opinions", rec)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertPropagatesError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewPostgresProviderWithPool(mock)

	mock.ExpectExec("INSERT INTO republic_acts").
		WillReturnError(errors.New("connection reset"))

	err = p.Upsert(context.Background(), "republic_acts", issuance.Record{
		Reference: "RA-1", Title: "t", Link: "l",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "republic_acts")
}

func TestPostgresList(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewPostgresProviderWithPool(mock)

	rows := pgxmock.NewRows([]string{
		"reference", "title", "link", "date", "category", "download_link", "file",
	}).
		AddRow(strPtr("RA-1"), "Act One", "https://x/1", strPtr("Jan 1"), nil, strPtr("https://x/1.pdf"), strPtr("1.pdf")).
		AddRow(nil, "Opinion", "https://x/2", nil, nil, nil, nil)

	mock.ExpectQuery("SELECT reference, title, link, date, category, download_link, file").
		WillReturnRows(rows)

	got, err := p.List(context.Background(), "republic_acts")
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, issuance.Record{
		Reference:    "RA-1",
		Title:        "Act One",
		Link:         "https://x/1",
		Date:         "Jan 1",
		DownloadLink: "https://x/1.pdf",
		File:         "1.pdf",
	}, got[0])

	require.Equal(t, issuance.Record{Title: "Opinion", Link: "https://x/2"}, got[1])
}

func TestPostgresListPropagatesQueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewPostgresProviderWithPool(mock)

	mock.ExpectQuery("SELECT reference").WillReturnError(errors.New("timeout"))

	_, err = p.List(context.Background(), "republic_acts")
	require.Error(t, err)
}

func TestPostgresRejectsBadTableNames(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewPostgresProviderWithPool(mock)

	err = p.Upsert(context.Background(), "Robert'); DROP", issuance.Record{Title: "t", Link: "l"})
	require.Error(t, err)

	_, err = p.List(context.Background(), "bad-name")
	require.Error(t, err)
}
