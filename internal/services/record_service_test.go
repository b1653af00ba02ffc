package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biopsycli/internal/form"
	"biopsycli/internal/render"
	"biopsycli/internal/shared/testutil"
	"biopsycli/internal/stats"
	"biopsycli/pkg/contracts/domain"
)

func newTestService(t *testing.T, table *domain.Table) (*RecordService, string) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "biopsy_data.json")
	if table != nil {
		path = testutil.WriteDataFile(t, filepath.Dir(path), table)
	}
	opts := render.DefaultOptions()
	opts.Clock = testutil.FrozenClock
	svc := NewRecordService(path, render.New(opts, logger), stats.DefaultHTMLOptions(), nil, logger)
	return svc, path
}

func TestRecordService_Search(t *testing.T) {
	svc, _ := newTestService(t, testutil.SampleTable())

	all, err := svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	hits, err := svc.Search(context.Background(), "mehta")
	require.NoError(t, err)
	assert.Empty(t, hits, "physician is not a summary column")

	hits, err = svc.Search(context.Background(), "FEMALE")
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestRecordService_NoData(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	n, loaded := svc.Count()
	assert.Equal(t, 0, n)
	assert.False(t, loaded)

	_, err := svc.Search(ctx, "")
	assert.ErrorIs(t, err, ErrNoData)
	_, err = svc.Get(ctx, "KB-1/25")
	assert.ErrorIs(t, err, ErrNoData)
	_, err = svc.StatisticsHTML(ctx)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRecordService_Get(t *testing.T) {
	svc, _ := newTestService(t, testutil.ScenarioTable())

	detail, err := svc.Get(context.Background(), "KB-001/26")
	require.NoError(t, err)
	assert.Equal(t, "Test Patient", detail.Summary.Name)
	assert.Equal(t, "35 years", detail.Fields.Get(domain.FieldAge))
	assert.Contains(t, detail.Preview, "Report ID:     2001")

	_, err = svc.Get(context.Background(), "KB-404")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRecordService_GeneratePDF(t *testing.T) {
	svc, _ := newTestService(t, testutil.ScenarioTable())

	doc, err := svc.GeneratePDF(context.Background(), "KB-001/26")
	require.NoError(t, err)
	assert.Equal(t, "2001_Test_Patient.pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF-")))
}

func TestRecordService_GeneratePDF_MissingFields(t *testing.T) {
	table := testutil.SampleTable()
	table.Rows[1][4] = ""
	svc, _ := newTestService(t, table)

	_, err := svc.GeneratePDF(context.Background(), "KB-2/25")

	var missing *form.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Receipt Date"}, missing.Fields)
}

func TestRecordService_Reload(t *testing.T) {
	svc, path := newTestService(t, testutil.ScenarioTable())
	ctx := context.Background()

	testutil.WriteDataFile(t, filepath.Dir(path), testutil.SampleTable())
	n, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// A broken file keeps the previous data.
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = svc.Reload(ctx)
	require.Error(t, err)
	count, loaded := svc.Count()
	assert.Equal(t, 3, count)
	assert.True(t, loaded)
}

func TestRecordService_ConcurrentReadsDuringReload(t *testing.T) {
	svc, _ := newTestService(t, testutil.SampleTable())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = svc.Search(ctx, "a")
				_, _ = svc.Reload(ctx)
			}
		}()
	}
	wg.Wait()

	n, loaded := svc.Count()
	assert.Equal(t, 3, n)
	assert.True(t, loaded)
}

func TestRecordService_StatisticsHTML(t *testing.T) {
	svc, _ := newTestService(t, testutil.SampleTable())

	html, err := svc.StatisticsHTML(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(html), "<strong>Biopsy Number</strong>"))

	snap, headers, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, snap.TotalRows)
	assert.Len(t, headers, len(testutil.SampleTable().Headers))
}
