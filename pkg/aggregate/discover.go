package aggregate

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

// DefaultRunIDPattern extracts the run id from paths like "run_12/..." or
// "exp.run7.csv".
const DefaultRunIDPattern = `run[_-]?(\d+)`

// RunFile is one run's output file and the run id taken from its path.
type RunFile struct {
	ID   int
	Path string
}

// Discover walks dir for files whose base name matches the glob pattern and
// assigns each a run id with idPattern, whose first capture group must be
// an integer. The result is sorted by run id; the walk order is never
// used. Matching files whose path carries no run id, such as aggregate
// outputs written back into dir, are returned in ignored. Two files with
// the same run id are an invariant violation.
func Discover(dir, pattern, idPattern string) (runs []RunFile, ignored []string, err error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, nil, errs.Argument("bad file pattern %q: %v", pattern, err)
	}
	if idPattern == "" {
		idPattern = DefaultRunIDPattern
	}
	idRe, err := regexp.Compile(idPattern)
	if err != nil {
		return nil, nil, errs.Argument("bad run id pattern %q: %v", idPattern, err)
	}
	if idRe.NumSubexp() < 1 {
		return nil, nil, errs.Argument("run id pattern %q has no capture group", idPattern)
	}

	byID := make(map[int]string)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		id, ok, err := runID(idRe, filepath.ToSlash(rel))
		if err != nil {
			return errs.New("discover").Path(path).Cause(err).Err()
		}
		if !ok {
			ignored = append(ignored, path)
			return nil
		}
		if prev, dup := byID[id]; dup {
			return errs.New("discover").Path(path).Run(id).Cause(
				errs.Invariant("discover", "run id %d also claimed by %s", id, prev)).Err()
		}
		byID[id] = path
		return nil
	})
	if walkErr != nil {
		if errs.IsInvariant(walkErr) || errs.IsArgument(walkErr) {
			return nil, nil, walkErr
		}
		return nil, nil, errs.MissingFile("discover", dir, walkErr)
	}

	runs = make([]RunFile, 0, len(byID))
	for id, path := range byID {
		runs = append(runs, RunFile{ID: id, Path: path})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	sort.Strings(ignored)
	return runs, ignored, nil
}

// runID reports ok=false when path has no match for re.
func runID(re *regexp.Regexp, path string) (id int, ok bool, err error) {
	// last match wins so "run_3/run7.csv" style paths pick the file's id
	matches := re.FindAllStringSubmatch(path, -1)
	if len(matches) == 0 {
		return 0, false, nil
	}
	id, err = strconv.Atoi(matches[len(matches)-1][1])
	if err != nil || id < 0 {
		return 0, false, errs.Argument("run id %q in %q is not a non-negative integer", matches[len(matches)-1][1], path)
	}
	return id, true, nil
}
