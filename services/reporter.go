package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"rental-aggregator/models"
	"rental-aggregator/utils"
)

const sampleSize = 2

// ReportService computes and prints run statistics.
type ReportService struct {
	logger *utils.Logger
	out    io.Writer
}

// NewReportService creates a ReportService printing to stdout.
func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger, out: os.Stdout}
}

// NewReportServiceTo creates a ReportService printing to w.
func NewReportServiceTo(logger *utils.Logger, w io.Writer) *ReportService {
	return &ReportService{logger: logger, out: w}
}

// Generate computes the report for a dataset. Prices are aggregated only
// over listings that have one. Sample titles come from the first two
// listings, skipping blank ones.
func (s *ReportService) Generate(ds *models.Dataset) *models.Report {
	report := &models.Report{
		ListingsByCity: make(map[string]int),
	}
	if ds == nil || len(ds.Listings) == 0 {
		return report
	}

	report.TotalListings = len(ds.Listings)
	report.BySource = Summarize(ds.Listings).Counts

	total := 0
	for i := range ds.Listings {
		l := &ds.Listings[i]
		if l.Parking {
			report.WithParking++
		}
		if l.City != "" {
			report.ListingsByCity[l.City]++
		}
		if i < sampleSize && l.Title != "" {
			report.SampleTitles = append(report.SampleTitles, l.Title)
		}
		if l.Price == nil {
			continue
		}

		price := *l.Price
		if report.PricedListings == 0 || price < report.MinPrice {
			report.MinPrice = price
			report.Cheapest = l
		}
		if report.PricedListings == 0 || price > report.MaxPrice {
			report.MaxPrice = price
		}
		report.PricedListings++
		total += price
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(float64(total) / float64(report.PricedListings))
	}
	return report
}

// LogSummary writes the one-line summaries used in run logs.
func (s *ReportService) LogSummary(r *models.Report) {
	s.logger.Info("[summary] counts by source -> %s", models.Summary{Counts: r.BySource}.String())
	if len(r.SampleTitles) > 0 {
		s.logger.Info("[sample] first titles -> %s", strings.Join(r.SampleTitles, " | "))
	}
}

func (s *ReportService) Print(r *models.Report) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)
	w := s.out

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  RENTAL LISTINGS SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings   : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  With parking     : \033[1m%d\033[0m\n", r.WithParking)
	for _, c := range r.BySource {
		fmt.Fprintf(w, "  %-16s : %d\n", truncate(c.Source, 16), c.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Monthly Rent\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average : \033[1;32m$%.2f\033[0m (%d priced)\n", r.AveragePrice, r.PricedListings)
		fmt.Fprintf(w, "  Minimum : \033[1;32m$%d\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum : \033[1;32m$%d\033[0m\n", r.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.Cheapest != nil {
		fmt.Fprintf(w, "\033[1;33m  Cheapest Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.Cheapest.Title, 50))
		fmt.Fprintf(w, "  Source : %s\n", r.Cheapest.Source)
		fmt.Fprintf(w, "  URL    : %s\n", r.Cheapest.URL)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Listings by City\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByCity) == 0 {
		fmt.Fprintf(w, "  No city data\n")
	} else {
		type cityCount struct {
			city  string
			count int
		}
		var cities []cityCount
		for city, cnt := range r.ListingsByCity {
			cities = append(cities, cityCount{city, cnt})
		}
		sort.Slice(cities, func(i, j int) bool {
			if cities[i].count != cities[j].count {
				return cities[i].count > cities[j].count
			}
			return cities[i].city < cities[j].city
		})
		for _, cc := range cities {
			bar := strings.Repeat("█", cc.count)
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(cc.city, 28), bar, cc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
