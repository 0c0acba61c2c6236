package analytics

import (
	"testing"
	"time"

	"locality/internal/domain/visits"
	"locality/internal/useragent"

	"github.com/stretchr/testify/assert"
)

func endedVisit(ip string, device useragent.DeviceType, duration int64) visits.Visit {
	end := time.Now()
	return visits.Visit{
		IP:              ip,
		Device:          device,
		EndedAt:         &end,
		DurationSeconds: &duration,
	}
}

func openVisit(ip string, device useragent.DeviceType) visits.Visit {
	return visits.Visit{IP: ip, Device: device}
}

func TestComputeBounceRate(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	// 10 ended visits, 3 at or under the 30s threshold.
	vs := []visits.Visit{
		endedVisit("1.1.1.1", useragent.DeviceDesktop, 5),
		endedVisit("1.1.1.2", useragent.DeviceDesktop, 30),
		endedVisit("1.1.1.3", useragent.DeviceDesktop, 12),
		endedVisit("1.1.1.4", useragent.DeviceDesktop, 31),
		endedVisit("1.1.1.5", useragent.DeviceDesktop, 60),
		endedVisit("1.1.1.6", useragent.DeviceDesktop, 90),
		endedVisit("1.1.1.7", useragent.DeviceDesktop, 120),
		endedVisit("1.1.1.8", useragent.DeviceDesktop, 45),
		endedVisit("1.1.1.9", useragent.DeviceDesktop, 200),
		endedVisit("1.1.1.10", useragent.DeviceDesktop, 75),
	}

	agg := Compute(1, day, vs, nil)

	assert.Equal(t, 10, agg.TotalVisits)
	assert.InDelta(t, 30.0, agg.BounceRate, 0.001)
}

func TestComputeOpenVisitsExcludedFromDurations(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	vs := []visits.Visit{
		endedVisit("1.1.1.1", useragent.DeviceDesktop, 100),
		endedVisit("1.1.1.2", useragent.DeviceDesktop, 50),
		openVisit("1.1.1.3", useragent.DeviceDesktop),
		openVisit("1.1.1.4", useragent.DeviceDesktop),
	}

	agg := Compute(1, day, vs, nil)

	// Open visits still count as visits but never skew the mean.
	assert.Equal(t, 4, agg.TotalVisits)
	assert.Equal(t, int64(150), agg.TotalDuration)
	assert.InDelta(t, 75.0, agg.AvgDuration, 0.001)

	// Neither do they count as bounces.
	assert.InDelta(t, 0.0, agg.BounceRate, 0.001)
}

func TestComputeUniqueVisitorsByIP(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	vs := []visits.Visit{
		endedVisit("9.9.9.9", useragent.DeviceMobile, 40),
		endedVisit("9.9.9.9", useragent.DeviceMobile, 55),
		endedVisit("8.8.8.8", useragent.DeviceDesktop, 70),
	}

	agg := Compute(1, day, vs, nil)

	assert.Equal(t, 3, agg.TotalVisits)
	assert.Equal(t, 2, agg.UniqueVisitors)
}

func TestComputeDeviceBuckets(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	vs := []visits.Visit{
		endedVisit("1.1.1.1", useragent.DeviceDesktop, 10),
		endedVisit("1.1.1.2", useragent.DeviceMobile, 10),
		endedVisit("1.1.1.3", useragent.DeviceTablet, 10),
		// Unclassified rows land in the desktop bucket.
		endedVisit("1.1.1.4", "", 10),
	}

	agg := Compute(1, day, vs, nil)

	assert.Equal(t, 2, agg.DesktopVisits)
	assert.Equal(t, 1, agg.MobileVisits)
	assert.Equal(t, 1, agg.TabletVisits)
}

func TestComputeSectionViews(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	ins := []visits.Interaction{
		{Section: visits.SectionMenu},
		{Section: visits.SectionMenu},
		{Section: visits.SectionGallery},
		{Section: "reviews"},
	}

	agg := Compute(1, day, nil, ins)

	assert.Equal(t, 2, agg.MenuViews)
	assert.Equal(t, 1, agg.GalleryViews)
}

func TestComputeEmptyDay(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	agg := Compute(1, day, nil, nil)

	assert.Equal(t, 0, agg.TotalVisits)
	assert.Zero(t, agg.AvgDuration)
	assert.Zero(t, agg.BounceRate)
}

func TestComputeDeterministic(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	vs := []visits.Visit{
		endedVisit("1.1.1.1", useragent.DeviceMobile, 25),
		endedVisit("2.2.2.2", useragent.DeviceDesktop, 180),
		openVisit("3.3.3.3", useragent.DeviceTablet),
	}
	ins := []visits.Interaction{{Section: visits.SectionMenu}}

	first := Compute(7, day, vs, ins)
	second := Compute(7, day, vs, ins)

	assert.Equal(t, first, second)
}

func TestComputeNormalizesDate(t *testing.T) {
	// A mid-day timestamp must still bucket to midnight of that day.
	at := time.Date(2026, 8, 30, 14, 42, 7, 0, time.UTC)

	agg := Compute(1, at, nil, nil)

	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), agg.Date)
}
