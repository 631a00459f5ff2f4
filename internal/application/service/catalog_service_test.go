package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"github.com/sangkips/clinic-billing/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCatalog(backend *fakeBackend) *CatalogService {
	svc := NewCatalogService(backend, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCatalog_DefaultWhenEmpty(t *testing.T) {
	svc := newTestCatalog(&fakeBackend{})

	res, err := svc.ListServices(context.Background(), testDoctor, CatalogFilter{}, nil)

	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, entity.DefaultCatalogServiceID, res.Items[0].ID)
	assert.Equal(t, "Consultation", res.Items[0].Name)
	assert.Equal(t, 500.0, res.Items[0].Price)
	assert.True(t, res.Items[0].IsDefault)
	assert.True(t, res.Items[0].Disabled)
}

func TestCatalog_DefaultWhenFetchFails(t *testing.T) {
	svc := newTestCatalog(&fakeBackend{
		listServices: func(context.Context) ([]entity.CatalogService, error) {
			return nil, apperror.NewNetworkError("unreachable", errors.New("dial tcp"))
		},
	})

	res, err := svc.ListServices(context.Background(), testDoctor, CatalogFilter{}, nil)

	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].IsDefault)
}

func TestCatalog_Filters(t *testing.T) {
	svc := newTestCatalog(catalogBackend())
	ctx := context.Background()

	enabled, err := svc.ListServices(ctx, testDoctor, CatalogFilter{Status: CatalogStatusEnabled}, nil)
	require.NoError(t, err)
	assert.Len(t, enabled.Items, 2)

	disabled, err := svc.ListServices(ctx, testDoctor, CatalogFilter{Status: CatalogStatusDisabled}, nil)
	require.NoError(t, err)
	require.Len(t, disabled.Items, 1)
	assert.Equal(t, "Old X-Ray", disabled.Items[0].Name)

	searched, err := svc.ListServices(ctx, testDoctor, CatalogFilter{Search: "x-RAY"}, &pagination.PaginationParams{Page: 1, PerPage: 1})
	require.NoError(t, err)
	assert.Len(t, searched.Items, 1)
	assert.Equal(t, int64(2), searched.Pagination.Total)

	_, err = svc.ListServices(ctx, testDoctor, CatalogFilter{Status: "archived"}, nil)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}

func TestCatalog_CreateValidation(t *testing.T) {
	svc := newTestCatalog(&fakeBackend{})
	ctx := context.Background()

	_, err := svc.CreateService(ctx, testDoctor, entity.CatalogServiceInput{Name: "  ", Price: 100})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.CreateService(ctx, testDoctor, entity.CatalogServiceInput{Name: "Scaling", Price: 0})
	assert.Equal(t, "Please fill all required fields correctly.", err.Error())

	svcOut, err := svc.CreateService(ctx, testDoctor, entity.CatalogServiceInput{Name: " Scaling ", Price: 800})
	require.NoError(t, err)
	assert.Equal(t, "Scaling", svcOut.Name)
}

func TestCatalog_UpdatingDefaultCreates(t *testing.T) {
	created := false
	svc := newTestCatalog(&fakeBackend{
		createService: func(_ context.Context, in entity.CatalogServiceInput) (*entity.CatalogService, error) {
			created = true
			return &entity.CatalogService{ID: "new-id", Name: in.Name, Price: in.Price}, nil
		},
		updateService: func(context.Context, string, entity.CatalogServiceInput) (*entity.CatalogService, error) {
			t.Fatal("update must not be called for the default entry")
			return nil, nil
		},
	})

	out, err := svc.UpdateService(context.Background(), testDoctor, entity.DefaultCatalogServiceID, entity.CatalogServiceInput{Name: "Consultation", Price: 500})

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "new-id", out.ID)
}

func TestCatalog_Export(t *testing.T) {
	svc := newTestCatalog(catalogBackend())
	ctx := context.Background()

	csv, err := svc.ExportServices(ctx, testDoctor, CatalogFilter{Status: CatalogStatusEnabled}, ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "services.csv", csv.Filename)
	lines := strings.Split(string(csv.Data), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, `"Name","Created At","Price (Tsh)","Status"`, lines[0])

	xlsx, err := svc.ExportServices(ctx, testDoctor, CatalogFilter{}, ExportXLSX)
	require.NoError(t, err)
	assert.NotEmpty(t, xlsx.Data)

	_, err = svc.ExportServices(ctx, testDoctor, CatalogFilter{Search: "nothing matches"}, ExportCSV)
	require.Error(t, err)
	assert.Equal(t, "No data to export", err.Error())

	_, err = svc.ExportServices(ctx, testDoctor, CatalogFilter{}, "pdf")
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}
