package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/common"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/export"
)

// NewWriter returns the writer for format. pool is only used (and required)
// for postgres.
func NewWriter(format constants.OutputFormat, pool *pgxpool.Pool, logger *slog.Logger) (export.Writer, error) {
	switch format {
	case constants.OutputCSV, "":
		return export.NewCSVWriter(logger), nil
	case constants.OutputXLSX:
		return export.NewXLSXWriter(logger), nil
	case constants.OutputSQLite:
		return export.NewSQLiteWriter(logger), nil
	case constants.OutputPostgres:
		if pool == nil {
			return nil, common.NewAppError(common.CodeConfig, "postgres output needs a database connection", common.ErrInvalidInput)
		}
		return export.NewPostgresWriter(pool, logger), nil
	default:
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown output format %q", format), common.ErrInvalidInput)
	}
}
