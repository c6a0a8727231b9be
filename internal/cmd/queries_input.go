package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"

	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
)

// readQueriesFile reads plate,date,time records from path, or from stdin
// when path is "-".
func readQueriesFile(path string, stdin io.Reader) ([]restriction.Query, error) {
	if path == "-" {
		return parseQueries(stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, withExitCode(foundry.ExitFileNotFound, err)
		}
		return nil, err
	}
	defer file.Close() // nolint:errcheck
	return parseQueries(file)
}

// parseQueries reads one plate,date,time record per line. Blank lines and
// lines starting with # are skipped; fields are trimmed.
func parseQueries(r io.Reader) ([]restriction.Query, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	var queries []restriction.Query
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("line %d: expected plate,date,time: %w", parseErr.Line, parseErr.Err)
			}
			return nil, err
		}
		queries = append(queries, restriction.Query{
			Plate: strings.TrimSpace(record[0]),
			Date:  strings.TrimSpace(record[1]),
			Time:  strings.TrimSpace(record[2]),
		})
	}

	if len(queries) == 0 {
		return nil, errors.New("no queries found")
	}
	return queries, nil
}
