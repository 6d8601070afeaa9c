package catalog

import (
	"math"
	"slices"

	"github.com/lfs/storefront/internal/domain/catalog"
)

// FilterItem is one choosable entry of a filter: a value of a select or text
// property or a number range.
type FilterItem struct {
	Value        string  `json:"value,omitempty"`
	Name         string  `json:"name,omitempty"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Position     int     `json:"position"`
	Quantity     int     `json:"quantity"`
	ShowQuantity bool    `json:"show_quantity"`
}

// stepBound maps step sizes below Below to Step.
type stepBound struct {
	Below float64
	Step  int
}

// Automatic number steps. Steps of 1001 to 5000 fall back to 500 like the
// price steps of the shop always did.
var numberSteps = []stepBound{
	{2, 1}, {6, 5}, {11, 10}, {51, 50}, {101, 100}, {501, 500}, {1001, 1000}, {5001, 500}, {10001, 1000},
}

var priceSteps = []stepBound{
	{3, 3}, {6, 5}, {11, 10}, {51, 50}, {101, 100}, {501, 500}, {1001, 1000}, {5001, 500}, {10001, 1000},
}

// automaticStep derives a step size splitting [min, max] in about three
// buckets. Sizes above the table round up to the next thousand.
func automaticStep(min, max float64, table []stepBound) int {
	step := max
	if max != min {
		step = (max - min) / 3
	}
	if step < 0 {
		step = 0
	}
	for _, b := range table {
		if step < b.Below {
			return b.Step
		}
	}
	return int(math.Ceil(step/1000) * 1000)
}

// buckets splits [0, max] into ranges [i+1, i+step] for i = 0, step, 2*step...
// while i < max.
func buckets(max float64, step int) []FilterItem {
	if step <= 0 {
		return nil
	}
	var items []FilterItem
	for i := 0; i < int(max); i += step {
		items = append(items, FilterItem{
			Min:          float64(i + 1),
			Max:          float64(i + step),
			ShowQuantity: true,
		})
	}
	return items
}

// manualBuckets builds ranges between consecutive filter steps. Every range
// but the first starts one above its step.
func manualBuckets(steps []catalog.FilterStep) []FilterItem {
	starts := make([]float64, 0, len(steps))
	for _, s := range steps {
		starts = append(starts, s.Start)
	}
	slices.Sort(starts)

	var items []FilterItem
	for i := 0; i+1 < len(starts); i++ {
		min := starts[i]
		if i != 0 {
			min++
		}
		items = append(items, FilterItem{Min: min, Max: starts[i+1], ShowQuantity: true})
	}
	return items
}

// dropEmpty removes buckets without products; an empty bucket hands its
// lower bound to the next one.
func dropEmpty(items []FilterItem) []FilterItem {
	result := make([]FilterItem, 0, len(items))
	for i := range items {
		if items[i].Quantity == 0 {
			if i+1 < len(items) {
				items[i+1].Min = items[i].Min
			}
			continue
		}
		result = append(result, items[i])
	}
	return result
}
