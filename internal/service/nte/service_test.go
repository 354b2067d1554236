package nte

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/nte"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/storage"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
	"github.com/bpo-ops/ops-backend-go/internal/repository/sheet"
	"github.com/bpo-ops/ops-backend-go/internal/service/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *NTEServiceImpl {
	t.Helper()
	dir := t.TempDir()
	store, err := workbook.Open(filepath.Join(dir, "ops.xlsx"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, sheet.Bootstrap(store))

	files, err := storage.NewLocalStorage(filepath.Join(dir, "files"), "http://localhost/files")
	require.NoError(t, err)

	svc := NewNTEService(sheet.NewNTERepository(store), file.NewFileService(files), file.Branding{CompanyName: "Digital Minds BPO"}).(*NTEServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC) }
	return svc
}

func strPtr(s string) *string { return &s }

func TestCRUD(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, nte.CreateFormRequest{
		EmployeeName:        "Ana Cruz",
		EmployeeNumber:      "EMP1001",
		Supervisor:          "Sup A",
		DateOfIncident:      "2024-03-01",
		NarrationOfIncident: "Left the floor without notice.",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, id, "first id falls back to the next row number")

	second, err := svc.Create(ctx, nte.CreateFormRequest{EmployeeName: "Ben Reyes"})
	require.NoError(t, err)
	assert.Equal(t, 3, second)

	form, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", form.DateIssued)
	assert.Equal(t, nte.StatusIssued, form.Status)

	err = svc.Update(ctx, nte.UpdateFormRequest{ID: nte.ID(id), Consequence: strPtr("Written warning")})
	require.NoError(t, err)

	form, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Written warning", form.Consequence)
	assert.Equal(t, "Ana Cruz", form.EmployeeName, "fields missing from the update are kept")

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, nte.ErrFormNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ben Reyes", all[0].EmployeeName)
}

func TestUpdateRequiresID(t *testing.T) {
	svc := newTestService(t)
	err := svc.Update(context.Background(), nte.UpdateFormRequest{EmployeeName: strPtr("x")})
	assert.ErrorIs(t, err, nte.ErrMissingID)
}

func TestDeleteMissing(t *testing.T) {
	svc := newTestService(t)
	err := svc.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, nte.ErrFormNotFound)
	assert.EqualError(t, err, "Record not found")
}

func TestPreview(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, nte.CreateFormRequest{
		EmployeeName:        "Ana <b>Cruz</b>",
		DateOfIncident:      "2024-03-01",
		NarrationOfIncident: "Tom & Jerry",
	})
	require.NoError(t, err)

	p, err := svc.Preview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "NTE_AnabCruzb_2", p.DocumentName)
	require.Len(t, p.Pages, 2)

	ir, notice := p.Pages[0], p.Pages[1]
	assert.Contains(t, ir, "Incident Report (IR)")
	assert.Contains(t, ir, "Ana &lt;b&gt;Cruz&lt;/b&gt;")
	assert.NotContains(t, ir, "<b>Cruz")
	assert.Contains(t, ir, "Tom &amp; Jerry")
	assert.Contains(t, ir, "3/1/2024")
	assert.Contains(t, ir, "IR Code: 2 - Page 1 of 2")

	assert.Contains(t, notice, "Notice to Explain (NTE)")
	assert.Contains(t, notice, "Tom &amp; Jerry", "narration stands in for a missing explanation")
	assert.Contains(t, notice, "within 48 hours")
	assert.Contains(t, notice, "NTE Code: 2 - Page 2 of 2")
	assert.Contains(t, notice, "N/A", "missing department")
}

func TestDocumentNameFallback(t *testing.T) {
	assert.Equal(t, "NTE_Unknown_7", DocumentName(nte.Form{ID: 7, EmployeeName: "---"}))
}

func TestExportPDF(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, nte.CreateFormRequest{EmployeeName: "Ana Cruz"})
	require.NoError(t, err)

	doc, err := svc.ExportPDF(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "NTE_AnaCruz_2.pdf", doc.FileName)
	assert.True(t, strings.HasPrefix(doc.Path, "documents/nte/NTE_AnaCruz_2-"))
	assert.True(t, strings.HasPrefix(doc.URL, "http://localhost/files/documents/nte/"))
}
