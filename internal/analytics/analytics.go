package analytics

import (
	"math"
	"sort"

	"novareg/internal/classify"
	"novareg/internal/dates"
	"novareg/internal/model"
)

// Summary holds the headline registry counters.
type Summary struct {
	Total           int `json:"total"`
	Pending         int `json:"pending"`
	Late            int `json:"late"`
	AvgAgingDays    int `json:"avgAgingDays"`
	AvgLeadTimeDays int `json:"avgLeadTimeDays"`
	FulfillmentRate int `json:"fulfillmentRate"`
}

// Bucket is one labeled count in a chart-ready series.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// VendorLeadTime is one vendor's mean lead time in days.
type VendorLeadTime struct {
	Vendor  string `json:"vendor"`
	AvgDays int    `json:"avgDays"`
}

// Report is the full set of derived metrics and aggregates. It is a pure
// function of the order collection at query time; nothing here persists.
type Report struct {
	Summary           Summary          `json:"summary"`
	VendorVolume      []Bucket         `json:"vendorVolume"`
	MonthlyVolume     []Bucket         `json:"monthlyVolume"`
	AgingTiers        []Bucket         `json:"agingTiers"`
	StatusComposition []Bucket         `json:"statusComposition"`
	DayOfWeekVolume   []Bucket         `json:"dayOfWeekVolume"`
	VendorLeadTimes   []VendorLeadTime `json:"vendorLeadTimes"`
}

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
var dayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
var tierLabels = []string{"1-7d", "8-14d", "15-30d", "30d+"}

// Compute derives the full report from the order collection. Empty
// contributing sets resolve to zero counts and zero means, never an error.
func Compute(orders []model.Order) Report {
	return Report{
		Summary:           Summarize(orders),
		VendorVolume:      VendorVolume(orders),
		MonthlyVolume:     MonthlyVolume(orders),
		AgingTiers:        AgingTiers(orders),
		StatusComposition: StatusComposition(orders),
		DayOfWeekVolume:   DayOfWeekVolume(orders),
		VendorLeadTimes:   VendorLeadTimes(orders),
	}
}

// Summarize computes the headline counters.
func Summarize(orders []model.Order) Summary {
	s := Summary{Total: len(orders)}
	today := dates.Today()

	agingSum := 0
	for _, o := range orders {
		if !classify.IsFulfilled(o.Status) {
			s.Pending++
		}
		if classify.IsLate(o.Status, o.ExpectedRecvDate) {
			s.Late++
			if expected, ok := dates.Parse(o.ExpectedRecvDate); ok {
				agingSum += dates.DaysBetween(expected, today)
			}
		}
	}
	s.AvgAgingDays = roundedMean(agingSum, s.Late)

	leadSum, leadCount := 0, 0
	for _, o := range orders {
		if lead, ok := leadTime(o); ok {
			leadSum += lead
			leadCount++
		}
	}
	s.AvgLeadTimeDays = roundedMean(leadSum, leadCount)

	if s.Total > 0 {
		s.FulfillmentRate = int(math.Round(float64(s.Total-s.Pending) / float64(s.Total) * 100))
	}
	return s
}

// VendorVolume returns the top 5 vendors by order count, descending, ties
// broken by first-encountered order.
func VendorVolume(orders []model.Order) []Bucket {
	counts := make(map[string]int)
	var firstSeen []string
	for _, o := range orders {
		if _, seen := counts[o.VendorCode]; !seen {
			firstSeen = append(firstSeen, o.VendorCode)
		}
		counts[o.VendorCode]++
	}
	buckets := make([]Bucket, 0, len(firstSeen))
	for _, v := range firstSeen {
		buckets = append(buckets, Bucket{Label: v, Count: counts[v]})
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Count > buckets[j].Count })
	return topN(buckets, 5)
}

// MonthlyVolume buckets parseable order dates into the 12 calendar months,
// always emitting all 12 in Jan-Dec order.
func MonthlyVolume(orders []model.Order) []Bucket {
	var counts [12]int
	for _, o := range orders {
		if d, ok := dates.Parse(o.OrderDate); ok {
			counts[int(d.Month())-1]++
		}
	}
	buckets := make([]Bucket, 12)
	for i, label := range monthLabels {
		buckets[i] = Bucket{Label: label, Count: counts[i]}
	}
	return buckets
}

// AgingTiers buckets late orders by days overdue into inclusive-upper-bound
// tiers.
func AgingTiers(orders []model.Order) []Bucket {
	today := dates.Today()
	var counts [4]int
	for _, o := range orders {
		if !classify.IsLate(o.Status, o.ExpectedRecvDate) {
			continue
		}
		expected, ok := dates.Parse(o.ExpectedRecvDate)
		if !ok {
			continue
		}
		switch diff := dates.DaysBetween(expected, today); {
		case diff <= 7:
			counts[0]++
		case diff <= 14:
			counts[1]++
		case diff <= 30:
			counts[2]++
		default:
			counts[3]++
		}
	}
	buckets := make([]Bucket, 4)
	for i, label := range tierLabels {
		buckets[i] = Bucket{Label: label, Count: counts[i]}
	}
	return buckets
}

// StatusComposition counts orders per display category, descending by
// count; only categories that occur appear.
func StatusComposition(orders []model.Order) []Bucket {
	counts := make(map[classify.Category]int)
	var firstSeen []classify.Category
	for _, o := range orders {
		c := classify.CategoryOf(o.Status)
		if _, seen := counts[c]; !seen {
			firstSeen = append(firstSeen, c)
		}
		counts[c]++
	}
	buckets := make([]Bucket, 0, len(firstSeen))
	for _, c := range firstSeen {
		buckets = append(buckets, Bucket{Label: string(c), Count: counts[c]})
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Count > buckets[j].Count })
	return buckets
}

// DayOfWeekVolume counts parseable order dates per weekday, always emitting
// Sun through Sat.
func DayOfWeekVolume(orders []model.Order) []Bucket {
	var counts [7]int
	for _, o := range orders {
		if d, ok := dates.Parse(o.OrderDate); ok {
			counts[int(d.Weekday())]++
		}
	}
	buckets := make([]Bucket, 7)
	for i, label := range dayLabels {
		buckets[i] = Bucket{Label: label, Count: counts[i]}
	}
	return buckets
}

// VendorLeadTimes returns the top 5 vendors by mean lead time, ascending
// (fastest first), ties broken by first-encountered vendor. Only orders
// with both dates parseable contribute.
func VendorLeadTimes(orders []model.Order) []VendorLeadTime {
	type acc struct{ sum, count int }
	data := make(map[string]*acc)
	var firstSeen []string
	for _, o := range orders {
		lead, ok := leadTime(o)
		if !ok {
			continue
		}
		a := data[o.VendorCode]
		if a == nil {
			a = &acc{}
			data[o.VendorCode] = a
			firstSeen = append(firstSeen, o.VendorCode)
		}
		a.sum += lead
		a.count++
	}
	out := make([]VendorLeadTime, 0, len(firstSeen))
	for _, v := range firstSeen {
		a := data[v]
		out = append(out, VendorLeadTime{Vendor: v, AvgDays: roundedMean(a.sum, a.count)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgDays < out[j].AvgDays })
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func leadTime(o model.Order) (int, bool) {
	start, ok := dates.Parse(o.OrderDate)
	if !ok {
		return 0, false
	}
	end, ok := dates.Parse(o.ExpectedRecvDate)
	if !ok {
		return 0, false
	}
	return dates.DaysBetween(start, end), true
}

func roundedMean(sum, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

func topN(buckets []Bucket, n int) []Bucket {
	if len(buckets) > n {
		return buckets[:n]
	}
	return buckets
}
