package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/golang/snappy"
	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/salescloser/internal/backup/domain"
	"github.com/smallbiznis/salescloser/internal/backup/schema"
	"github.com/smallbiznis/salescloser/internal/clock"
	companydomain "github.com/smallbiznis/salescloser/internal/company/domain"
	obslogger "github.com/smallbiznis/salescloser/internal/observability/logger"
	"github.com/smallbiznis/salescloser/internal/observability/metrics"
	pipelinedomain "github.com/smallbiznis/salescloser/internal/pipeline/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const fileTimeLayout = "20060102-150405"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Company  companydomain.Service
	Pipeline pipelinedomain.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	company  companydomain.Service
	pipeline pipelinedomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("backup.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		company:  p.Company,
		pipeline: p.Pipeline,
		metrics:  p.Metrics,
	}
}

func (s *Service) Export(ctx context.Context, w io.Writer, opts domain.ExportOptions) (domain.Record, error) {
	settings, err := s.company.Get(ctx)
	if err != nil {
		return domain.Record{}, err
	}

	now := s.clock.Now()
	snap := domain.Snapshot{
		Format:     domain.Format,
		Version:    domain.Version,
		ID:         newID(now),
		ExportedAt: now,
		Company:    settings,
	}
	if err := s.repo.LoadAll(ctx, s.db, &snap); err != nil {
		return domain.Record{}, err
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return domain.Record{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if opts.Compress {
		payload = snappy.Encode(nil, payload)
	}
	if _, err := w.Write(payload); err != nil {
		return domain.Record{}, fmt.Errorf("write snapshot: %w", err)
	}

	fileName := opts.FileName
	if fileName == "" {
		fileName = FileName(settings.Name, now, opts.Compress)
	}
	record := domain.Record{
		ID:         snap.ID,
		FileName:   fileName,
		Method:     domain.MethodExport,
		SizeBytes:  int64(len(payload)),
		Compressed: opts.Compress,
		CreatedAt:  now,
	}
	if err := s.saveRecord(ctx, &record); err != nil {
		return domain.Record{}, err
	}

	obslogger.WithContext(ctx, s.log).Info("snapshot exported",
		zap.String("snapshot_id", snap.ID),
		zap.String("file", fileName),
		zap.Int64("bytes", record.SizeBytes),
		zap.Int("quotes", len(snap.Quotes)),
		zap.Int("deals", len(snap.Deals)),
	)
	return record, nil
}

func (s *Service) Import(ctx context.Context, r io.Reader, fileName string) (domain.ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("read snapshot: %w", err)
	}
	document, compressed, err := decode(raw)
	if err != nil {
		return domain.ImportResult{}, err
	}
	if err := schema.ValidateSnapshot(document); err != nil {
		return domain.ImportResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(document, &snap); err != nil {
		return domain.ImportResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	if snap.Version > domain.Version {
		return domain.ImportResult{}, domain.ErrUnsupportedVersion
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.ReplaceAll(ctx, tx, snap)
	})
	if err != nil {
		return domain.ImportResult{}, err
	}

	summary, err := s.pipeline.SyncAll(ctx)
	if err != nil {
		return domain.ImportResult{}, err
	}

	now := s.clock.Now()
	record := domain.Record{
		ID:         newID(now),
		FileName:   fileName,
		Method:     domain.MethodImport,
		SizeBytes:  int64(len(raw)),
		Compressed: compressed,
		CreatedAt:  now,
	}
	if err := s.saveRecord(ctx, &record); err != nil {
		return domain.ImportResult{}, err
	}

	obslogger.WithContext(ctx, s.log).Info("snapshot imported",
		zap.String("snapshot_id", snap.ID),
		zap.Int("quotes", len(snap.Quotes)),
		zap.Int("deals_created", summary.Created),
	)
	return domain.ImportResult{
		Record:         record,
		SnapshotID:     snap.ID,
		Clients:        len(snap.Clients),
		Quotes:         len(snap.Quotes),
		Deals:          len(snap.Deals),
		PurchaseOrders: len(snap.PurchaseOrders),
		Sync:           summary,
	}, nil
}

func (s *Service) Records(ctx context.Context) ([]domain.Record, error) {
	return s.repo.ListRecords(ctx, s.db, domain.RecordsKept)
}

func (s *Service) saveRecord(ctx context.Context, record *domain.Record) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertRecord(ctx, tx, record); err != nil {
			return err
		}
		_, err := s.repo.PruneRecords(ctx, tx, domain.RecordsKept)
		return err
	})
	if err != nil {
		return err
	}
	s.metrics.RecordBackup(ctx, string(record.Method))
	return nil
}

// FileName builds the default name of a snapshot file, e.g.
// salescloser-acme-tools-20250301-093000.json.sz
func FileName(company string, at time.Time, compressed bool) string {
	name := "salescloser"
	if s := slug.Make(company); s != "" {
		name += "-" + s
	}
	name += "-" + at.UTC().Format(fileTimeLayout) + ".json"
	if compressed {
		name += ".sz"
	}
	return name
}

// decode returns the JSON document, undoing snappy block compression when
// the payload is not JSON already.
func decode(raw []byte) ([]byte, bool, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, false, domain.ErrEmptySnapshot
	}
	if trimmed[0] == '{' {
		return trimmed, false, nil
	}

	document, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: not JSON and not snappy: %v", domain.ErrInvalidSnapshot, err)
	}
	return document, true, nil
}

func newID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}
