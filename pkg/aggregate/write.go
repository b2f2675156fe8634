package aggregate

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dd0wney/cluso-bindstat/pkg/dataio"
	"github.com/dd0wney/cluso-bindstat/pkg/metrics"
)

// MatrixFileName returns "cumulative_class_stats.<category>.<expName>.csv".
func MatrixFileName(category, expName string) string {
	return fmt.Sprintf("cumulative_class_stats.%s.%s.csv", category, expName)
}

// EdgeCountFileName returns "cumulative_edge_counts.<expName>.csv".
func EdgeCountFileName(expName string) string {
	return fmt.Sprintf("cumulative_edge_counts.%s.csv", expName)
}

// WriteMatrix writes m to path; a ".sz" path is snappy compressed.
func WriteMatrix(path string, m *Matrix) error {
	w, err := dataio.Create(path)
	if err != nil {
		return err
	}
	if err := m.WriteCSV(w); err != nil {
		return errors.Join(err, w.Close())
	}
	return w.Close()
}

// WriteMatrices writes one file per category of result into dir and
// returns the written paths in category order.
func WriteMatrices(dir, expName string, result *Result, reg *metrics.Registry) ([]string, error) {
	paths := make([]string, 0, len(result.Matrices))
	for i, m := range result.Matrices {
		path := filepath.Join(dir, MatrixFileName(result.Categories[i], expName))
		if err := WriteMatrix(path, m); err != nil {
			return paths, err
		}
		reg.RecordMatrixWritten()
		paths = append(paths, path)
	}
	return paths, nil
}
