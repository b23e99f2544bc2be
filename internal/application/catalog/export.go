package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/storage/minio"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// CSVHeader is the column row of every catalog export.
var CSVHeader = []string{
	"name", "hostStar", "discoveryMethod", "distance", "radius", "mass",
	"starType", "habitability.score", "habitability.label",
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteCSV writes planets as CSV under CSVHeader. Unknown measurements are
// empty cells.
func WriteCSV(w io.Writer, planets []*planet.Planet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "failed to write csv header")
	}
	for _, p := range planets {
		if p == nil {
			continue
		}
		rec := []string{
			p.Name,
			p.HostStar,
			p.DiscoveryMethod,
			formatFloat(p.DistancePc),
			formatFloat(p.Radius),
			formatFloat(p.Mass),
			p.StarType,
			strconv.Itoa(p.Habitability.Score),
			p.Habitability.Label,
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "failed to write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "failed to flush csv")
	}
	return nil
}

// Export writes every planet matching q to object storage and returns a
// presigned download URL. Paging fields of q are ignored.
func (s *serviceImpl) Export(ctx context.Context, q planet.Query) (res *ExportResult, err error) {
	defer func() { prometheus.RecordExport(s.Metrics, "object_store", err) }()

	if s.Store == nil {
		return nil, errors.Unavailable("export storage is not configured")
	}
	q.Page, q.Limit = 0, 0
	planets, _, err := s.Repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, planets); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	exp := &planet.Export{ID: uuid.New(), Rows: len(planets), CreatedAt: now}
	exp.ObjectKey = minio.ExportKey(exp.ID, now)

	up, err := s.Store.PutExport(ctx, exp.ObjectKey, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return nil, err
	}
	exp.SizeBytes = up.Size

	url, err := s.Store.PresignExport(ctx, exp.ObjectKey)
	if err != nil {
		// An object nobody can download is garbage.
		if derr := s.Store.DeleteExport(context.WithoutCancel(ctx), exp.ObjectKey); derr != nil {
			s.Logger.Warn("Failed to remove unsigned export", logging.String("key", exp.ObjectKey), logging.Err(derr))
		}
		return nil, err
	}

	if s.Exports != nil {
		if err := s.Exports.Save(ctx, exp); err != nil {
			s.Logger.Warn("Failed to record export", logging.String("key", exp.ObjectKey), logging.Err(err))
		}
	}

	s.Logger.Info("Catalog exported",
		logging.String("key", exp.ObjectKey),
		logging.Int("rows", exp.Rows),
		logging.Int64("bytes", exp.SizeBytes))
	return &ExportResult{Export: exp, URL: url}, nil
}

func (s *serviceImpl) RecentExports(ctx context.Context, limit int) ([]*planet.Export, error) {
	if s.Exports == nil {
		return []*planet.Export{}, nil
	}
	return s.Exports.Recent(ctx, limit)
}

//Personal.AI order the ending
