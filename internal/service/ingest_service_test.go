package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gstrates/internal/config"
	"gstrates/internal/domain"
	"gstrates/internal/normalize"
	"gstrates/internal/policy"
	"gstrates/internal/port"
	"gstrates/internal/reconcile"
	"gstrates/internal/repository/sqlstore"
	"gstrates/internal/service"
	"gstrates/mocks"
)

const scheduleCSV = "S.No,HSN,Description of goods,Rate\n" +
	"1.,0902,Tea leaves,2.5%\n" +
	"2.,1905,Biscuits and similar baked products,9\n" +
	"3.,2105,Ice cream,120\n"

func newCatalogue(t *testing.T) port.RateCatalogue {
	t.Helper()
	db, err := sqlstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlstore.Migrate(db))
	return sqlstore.NewRateCatalogueRepo(db)
}

func newIngest(cat port.RateCatalogue, storage port.ObjectStorage, maxMB int64) service.IngestService {
	return service.NewIngestService(
		cat,
		reconcile.New(cat, policy.Default()),
		normalize.New(0),
		storage,
		nil,
		&config.IngestConfig{MaxFileSizeMB: maxMB},
		"gstrates-documents",
	)
}

func TestIngestService_Ingest_CSV(t *testing.T) {
	cat := newCatalogue(t)
	store := new(mocks.MockObjectStorage)
	store.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "gstrates-documents" && in.ContentType == "text/csv" && in.Size == int64(len(scheduleCSV))
	})).Return(&port.UploadOutput{Location: "s3://x"}, nil).Once()

	svc := newIngest(cat, store, 1)
	report, err := svc.Ingest(context.Background(), service.IngestInput{
		FileName:   "uploads/schedule.csv",
		Data:       []byte(scheduleCSV),
		UploadedBy: "ops",
	})

	require.NoError(t, err)
	assert.Equal(t, "schedule.csv", report.FileName)
	assert.Equal(t, "ops", report.UploadedBy)
	assert.Equal(t, "schedule.csv", report.SourceDocument)
	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, 3, report.ParsedRows)
	// the 120% row is out of range
	assert.Equal(t, 2, report.ValidRows)
	assert.Equal(t, 2, report.Inserted)
	assert.Len(t, report.Changes, 2)
	store.AssertExpectations(t)

	n, err := cat.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIngestService_Ingest_Idempotent(t *testing.T) {
	cat := newCatalogue(t)
	svc := newIngest(cat, nil, 1)
	in := service.IngestInput{FileName: "schedule.csv", Data: []byte(scheduleCSV)}

	_, err := svc.Ingest(context.Background(), in)
	require.NoError(t, err)
	second, err := svc.Ingest(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Unchanged)
	assert.Empty(t, second.Changes)
}

func TestIngestService_Ingest_TooLarge(t *testing.T) {
	svc := newIngest(new(mocks.MockRateCatalogue), nil, 1)
	_, err := svc.Ingest(context.Background(), service.IngestInput{
		FileName: "big.csv",
		Data:     make([]byte, 1024*1024+1),
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestIngestService_Ingest_UnsupportedType(t *testing.T) {
	svc := newIngest(new(mocks.MockRateCatalogue), nil, 1)
	_, err := svc.Ingest(context.Background(), service.IngestInput{FileName: "notes.txt", Data: []byte("hello")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestIngestService_Ingest_ArchiveFailure(t *testing.T) {
	cat := new(mocks.MockRateCatalogue)
	store := new(mocks.MockObjectStorage)
	store.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("network down"))

	svc := newIngest(cat, store, 1)
	_, err := svc.Ingest(context.Background(), service.IngestInput{FileName: "s.csv", Data: []byte(scheduleCSV)})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	cat.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestIngestService_Ingest_UnreadableDocumentRemovedFromArchive(t *testing.T) {
	cat := new(mocks.MockRateCatalogue)
	store := new(mocks.MockObjectStorage)
	var archived string
	store.On("Upload", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { archived = args.Get(1).(port.UploadInput).Key }).
		Return(&port.UploadOutput{Location: "s3://x"}, nil).Once()
	store.On("Delete", mock.Anything, "gstrates-documents", mock.Anything).Return(nil).Once()

	svc := newIngest(cat, store, 1)
	_, err := svc.Ingest(context.Background(), service.IngestInput{
		FileName: "broken.pdf",
		Data:     []byte("%PDF-1.4\ntruncated"),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
	store.AssertExpectations(t)
	assert.Contains(t, archived, "/broken.pdf")
	store.AssertCalled(t, "Delete", mock.Anything, "gstrates-documents", archived)
	cat.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestIngestService_Ingest_StoreFailureReturnsPartialReport(t *testing.T) {
	cat := new(mocks.MockRateCatalogue)
	cat.On("FindByCodeAndDescription", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	cat.On("FindAllByCode", mock.Anything, mock.Anything).Return([]domain.RateRecord{}, nil)
	cat.On("Insert", mock.Anything, mock.MatchedBy(func(r *domain.RateRecord) bool { return r.Code == "0902" })).Return(nil).Once()
	cat.On("Insert", mock.Anything, mock.MatchedBy(func(r *domain.RateRecord) bool { return r.Code == "1905" })).Return(errors.New("disk full"))

	svc := newIngest(cat, nil, 1)
	report, err := svc.Ingest(context.Background(), service.IngestInput{FileName: "s.csv", Data: []byte(scheduleCSV)})

	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Inserted)
}

func TestIngestService_SeedIfEmpty(t *testing.T) {
	cat := newCatalogue(t)
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "seed_data/rates.csv", []byte(scheduleCSV), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "seed_data/README.md", []byte("# seeds"), 0o644))

	svc := newIngest(cat, nil, 1)
	seeded, err := svc.SeedIfEmpty(context.Background(), fsys, "seed_data")
	require.NoError(t, err)
	assert.Equal(t, 1, seeded)

	rec, err := cat.FindByCodeAndDescription(context.Background(), "0902", "Tea leaves")
	require.NoError(t, err)
	assert.Equal(t, "seed_rates.csv", rec.SourceDocument)

	// A populated catalogue is left alone.
	seeded, err = svc.SeedIfEmpty(context.Background(), fsys, "seed_data")
	require.NoError(t, err)
	assert.Zero(t, seeded)
}
