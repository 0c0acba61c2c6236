package analytics

import (
	"time"

	"locality/internal/domain/visits"
	"locality/internal/useragent"
)

// bounceThreshold is the longest duration still counted as a bounce.
const bounceThreshold = 30 * time.Second

// Compute derives a DailyAggregate from the raw visit and interaction rows of
// one day. It is deterministic: the same input set always produces the same
// aggregate, which is what makes the upsert idempotent.
//
// Counting rules:
//   - every visit counts toward total_visits, ended or not
//   - unique_visitors is distinct by IP
//   - visits without an end time are excluded from duration sums and the mean
//   - bounce_rate is the fraction of ended visits with duration <= 30s
//   - unclassified devices count as desktop
func Compute(storeID int64, date time.Time, vs []visits.Visit, ins []visits.Interaction) *DailyAggregate {
	agg := &DailyAggregate{
		StoreID: storeID,
		Date:    time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
	}

	seenIPs := make(map[string]struct{})
	var ended, bounced int

	for i := range vs {
		v := &vs[i]
		agg.TotalVisits++

		if _, ok := seenIPs[v.IP]; !ok {
			seenIPs[v.IP] = struct{}{}
			agg.UniqueVisitors++
		}

		if v.DurationSeconds != nil {
			ended++
			agg.TotalDuration += *v.DurationSeconds
			if time.Duration(*v.DurationSeconds)*time.Second <= bounceThreshold {
				bounced++
			}
		}

		switch v.Device {
		case useragent.DeviceMobile:
			agg.MobileVisits++
		case useragent.DeviceTablet:
			agg.TabletVisits++
		default:
			agg.DesktopVisits++
		}
	}

	if ended > 0 {
		agg.AvgDuration = float64(agg.TotalDuration) / float64(ended)
		agg.BounceRate = float64(bounced) / float64(ended) * 100
	}

	for i := range ins {
		switch ins[i].Section {
		case visits.SectionMenu:
			agg.MenuViews++
		case visits.SectionGallery:
			agg.GalleryViews++
		}
	}

	return agg
}
