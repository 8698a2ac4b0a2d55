package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kursadbilgin/lead-dispatcher/internal/domain"
	"go.uber.org/zap"
)

// Separator between the name and phone fields of a lead file line.
const Separator = ';'

// Load reads a semicolon-delimited lead file (name;phone, one record per
// line, no header row) into an ordered queue. Lines with a missing name or
// phone are dropped silently.
func Load(path string, logger *zap.Logger) ([]domain.Lead, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lead file: %w", err)
	}
	defer file.Close()

	leads, err := parse(file, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lead file %s: %w", path, err)
	}

	logger.Info("lead file loaded",
		zap.String("path", path),
		zap.Int("leads", len(leads)),
	)
	return leads, nil
}

func parse(r io.Reader, logger *zap.Logger) ([]domain.Lead, error) {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var leads []domain.Lead
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(record) < 2 {
			logger.Debug("dropping malformed line", zap.Strings("fields", record))
			continue
		}

		lead := domain.Lead{
			Name:  strings.TrimSpace(record[0]),
			Phone: strings.TrimSpace(record[1]),
		}
		if err := lead.Validate(); err != nil {
			logger.Debug("dropping incomplete lead", zap.Error(err))
			continue
		}

		leads = append(leads, lead)
		logger.Debug("lead loaded", zap.String("name", lead.Name))
	}

	return leads, nil
}
