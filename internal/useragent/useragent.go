// Package useragent classifies raw User-Agent strings into coarse device,
// browser and OS buckets using plain substring matching. It is intentionally
// not a full UA database; analytics only needs the buckets.
package useragent

import "strings"

type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
)

type Classification struct {
	Device  DeviceType `json:"device"`
	Browser string     `json:"browser"`
	OS      string     `json:"os"`
}

// Classify buckets a raw user-agent string. Anything unrecognized falls back
// to desktop / "unknown", matching how the aggregates count devices.
func Classify(rawUA string) Classification {
	ua := strings.ToLower(rawUA)

	c := Classification{
		Device:  DeviceDesktop,
		Browser: "unknown",
		OS:      "unknown",
	}

	switch {
	case strings.Contains(ua, "ipad"),
		strings.Contains(ua, "tablet"),
		strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		c.Device = DeviceTablet
	case strings.Contains(ua, "mobile"),
		strings.Contains(ua, "iphone"),
		strings.Contains(ua, "android"):
		c.Device = DeviceMobile
	}

	switch {
	case strings.Contains(ua, "edg/"), strings.Contains(ua, "edge"):
		c.Browser = "edge"
	case strings.Contains(ua, "opr/"), strings.Contains(ua, "opera"):
		c.Browser = "opera"
	case strings.Contains(ua, "chrome"), strings.Contains(ua, "crios"):
		c.Browser = "chrome"
	case strings.Contains(ua, "firefox"), strings.Contains(ua, "fxios"):
		c.Browser = "firefox"
	case strings.Contains(ua, "safari"):
		c.Browser = "safari"
	}

	switch {
	case strings.Contains(ua, "windows"):
		c.OS = "windows"
	case strings.Contains(ua, "android"):
		c.OS = "android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ios"):
		c.OS = "ios"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		c.OS = "macos"
	case strings.Contains(ua, "linux"):
		c.OS = "linux"
	}

	return c
}
