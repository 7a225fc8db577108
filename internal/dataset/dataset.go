package dataset

import (
	"math"
	"sort"
	"sync"
	"time"
)

const day = 24 * time.Hour

type aggregatedData struct {
	morningSum,
	daySum,
	eveningSum float64
	morningCount,
	dayCount,
	eveningCount int
}

type dailyAggregatedData map[int64]aggregatedData

type setOfData struct {
	mu   sync.RWMutex
	data dailyAggregatedData
}

func (d *setOfData) push(value float64, timestamp time.Time) {
	bod := timestamp.Truncate(day).UnixMilli()
	hour := timestamp.Hour()

	d.mu.Lock()
	defer d.mu.Unlock()

	dayData := d.data[bod]

	switch {
	case hour >= 6 && hour < 12:
		dayData.morningSum += value
		dayData.morningCount++
	case hour >= 12 && hour < 18:
		dayData.daySum += value
		dayData.dayCount++
	default:
		dayData.eveningSum += value
		dayData.eveningCount++
	}

	d.data[bod] = dayData
}

// remove drops every day that begins before t.
func (d *setOfData) remove(t time.Time) {
	cutoff := t.Truncate(day).UnixMilli()

	d.mu.Lock()
	defer d.mu.Unlock()

	for bod := range d.data {
		if bod < cutoff {
			delete(d.data, bod)
		}
	}
}

func newSetOfData() *setOfData {
	return &setOfData{
		data: make(dailyAggregatedData),
	}
}

// [[1324508400000, 34], [1324594800000, 54] , ... , [1326236400000, 43]].
type timeSeries [][]any

func toFixed(v float64) float64 {
	return math.Round(v*100) / 100
}

func (d *setOfData) timeSeries() timeSeries {
	d.mu.RLock()
	defer d.mu.RUnlock()

	days := make([]int64, 0, len(d.data))
	for bod := range d.data {
		days = append(days, bod)
	}

	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	series := timeSeries{}

	for _, timestamp := range days {
		data := d.data[timestamp]
		bod := time.UnixMilli(timestamp)

		if data.morningCount > 0 {
			series = append(series, []any{
				bod.Add(8 * time.Hour).UnixMilli(),
				toFixed(data.morningSum / float64(data.morningCount)),
			})
		}

		if data.dayCount > 0 {
			series = append(series, []any{
				bod.Add(14 * time.Hour).UnixMilli(),
				toFixed(data.daySum / float64(data.dayCount)),
			})
		}

		if data.eveningCount > 0 {
			series = append(series, []any{
				bod.Add(20 * time.Hour).UnixMilli(),
				toFixed(data.eveningSum / float64(data.eveningCount)),
			})
		}
	}

	return series
}
