package forward

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dilg-bohol/issuance-harvester/internal/issuance"
)

type staticSource struct {
	records []issuance.Record
	err     error
}

func (s *staticSource) List(_ context.Context, _ string) ([]issuance.Record, error) {
	return s.records, s.err
}

func testCat() issuance.Category {
	return issuance.Category{
		Key:         "ra",
		Table:       "republic_acts",
		WebhookPath: "/webhook/republic-act",
		PayloadKey:  "republic_acts",
	}
}

func TestForwardSendsFullTable(t *testing.T) {
	var (
		gotPath        string
		gotContentType string
		gotBody        []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	source := &staticSource{records: []issuance.Record{
		{
			Reference:    "RA-001",
			Title:        "Act One",
			Link:         "https://dilg.gov.ph/ra/1",
			Date:         "Jan 1, 2021",
			DownloadLink: "https://dilg.gov.ph/resources/ra-1.pdf",
			File:         "ra-1.pdf",
		},
		{Title: "Act Two", Link: "https://dilg.gov.ph/ra/2"},
	}}

	f := New(srv.URL, 5*time.Second, source, zap.NewNop())
	sent, err := f.Forward(context.Background(), testCat())
	require.NoError(t, err)
	require.Equal(t, 2, sent)
	require.Equal(t, "/webhook/republic-act", gotPath)
	require.Equal(t, "application/json", gotContentType)

	var payload map[string][]map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	batch, ok := payload["republic_acts"]
	require.True(t, ok, "batch keyed by the category payload key")
	require.Len(t, batch, 2)

	require.Equal(t, map[string]string{
		"title":         "Act One",
		"link":          "https://dilg.gov.ph/ra/1",
		"reference":     "RA-001",
		"date":          "Jan 1, 2021",
		"download_link": "https://dilg.gov.ph/resources/ra-1.pdf",
	}, batch[0])

	// The local filename never crosses the wire; absent fields go out empty.
	require.NotContains(t, batch[0], "file")
	require.NotContains(t, batch[0], "category")
	require.Equal(t, "", batch[1]["reference"])
	require.Equal(t, "", batch[1]["download_link"])
}

func TestForwardIncludesCategoryWhenPresent(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	source := &staticSource{records: []issuance.Record{
		{
			Title:    "Opinion on Devolution",
			Link:     "https://dilg.gov.ph/lo/1",
			Category: "Legal Opinions",
			Date:     "Jan 5, 2021",
		},
	}}

	cat := issuance.Category{
		Key:         "lo",
		Table:       "legal_opinions",
		WebhookPath: "/webhook/legal-opinion",
		PayloadKey:  "legal_opinions",
	}

	f := New(srv.URL, 5*time.Second, source, zap.NewNop())
	sent, err := f.Forward(context.Background(), cat)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	var payload map[string][]map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	batch := payload["legal_opinions"]
	require.Len(t, batch, 1)
	require.Equal(t, "Legal Opinions", batch[0]["category"])
}

func TestForwardEmptyTableShortCircuits(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New(srv.URL, 5*time.Second, &staticSource{}, zap.NewNop())
	sent, err := f.Forward(context.Background(), testCat())
	require.ErrorIs(t, err, ErrNothingToSend)
	require.Zero(t, sent)
	require.Zero(t, calls, "empty table must not produce an HTTP call")
}

func TestForwardRejectedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "schema mismatch", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	source := &staticSource{records: []issuance.Record{{Title: "t", Link: "l"}}}
	f := New(srv.URL, 5*time.Second, source, zap.NewNop())

	sent, err := f.Forward(context.Background(), testCat())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNothingToSend)
	require.Zero(t, sent)
	require.Contains(t, err.Error(), "422")
	require.Contains(t, err.Error(), "schema mismatch")
}

func TestForwardListFailure(t *testing.T) {
	f := New("http://127.0.0.1:0", time.Second, &staticSource{err: errors.New("db down")}, zap.NewNop())
	_, err := f.Forward(context.Background(), testCat())
	require.Error(t, err)
	require.Contains(t, err.Error(), "db down")
}

func TestForwardUnreachableDownstream(t *testing.T) {
	source := &staticSource{records: []issuance.Record{{Title: "t", Link: "l"}}}
	// Nothing listens on this port.
	f := New("http://127.0.0.1:1", time.Second, source, zap.NewNop())

	_, err := f.Forward(context.Background(), testCat())
	require.Error(t, err)
}

func TestForwardTrailingSlashBase(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	source := &staticSource{records: []issuance.Record{{Title: "t", Link: "l"}}}
	f := New(srv.URL+"/", 5*time.Second, source, zap.NewNop())

	sent, err := f.Forward(context.Background(), testCat())
	require.NoError(t, err, "2xx statuses other than 200 count as delivered")
	require.Equal(t, 1, sent)
	require.Equal(t, "/webhook/republic-act", gotPath)
}
