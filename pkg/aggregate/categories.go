package aggregate

import (
	"strconv"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

// Category names of the fixed histogram columns.
const (
	CategoryFree         = "free"
	CategorySingletonsA  = "singletonsA"
	CategorySingletonsB  = "singletonsB"
	CategorySingletonsAB = "singletonsAB"
)

// category maps one output category to the histogram columns it sums.
type category struct {
	name    string
	columns []int
}

// Categories returns the output category names for histograms with
// numColumns columns. With groupFrom = k >= 2 the columns kmer..Nmer are
// summed into one "kplus" category; groupFrom = 0 disables grouping.
func Categories(numColumns, groupFrom int) ([]string, error) {
	cats, err := categoryLayout(numColumns, groupFrom)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.name
	}
	return names, nil
}

func categoryLayout(numColumns, groupFrom int) ([]category, error) {
	if numColumns < 4 {
		return nil, errs.Invariant("categories", "histogram has %d columns, need at least 4", numColumns)
	}
	maxMer := numColumns - 3

	cats := []category{
		{CategoryFree, []int{0}},
		{CategorySingletonsA, []int{1}},
		{CategorySingletonsB, []int{2}},
		{CategorySingletonsAB, []int{3}},
	}

	if groupFrom != 0 && (groupFrom < 2 || groupFrom > maxMer) {
		return nil, errs.Argument("group-from %d outside 2..%d", groupFrom, maxMer)
	}

	for n := 2; n <= maxMer; n++ {
		col := n + 2
		if groupFrom != 0 && n >= groupFrom {
			if n == groupFrom {
				cats = append(cats, category{name: strconv.Itoa(n) + "plus"})
			}
			last := &cats[len(cats)-1]
			last.columns = append(last.columns, col)
			continue
		}
		cats = append(cats, category{name: strconv.Itoa(n) + "mer", columns: []int{col}})
	}
	return cats, nil
}
