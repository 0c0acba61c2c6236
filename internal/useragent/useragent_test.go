package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		device  DeviceType
		browser string
		os      string
	}{
		{
			name:    "chrome on windows",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			device:  DeviceDesktop,
			browser: "chrome",
			os:      "windows",
		},
		{
			name:    "safari on iphone",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			device:  DeviceMobile,
			browser: "safari",
			os:      "ios",
		},
		{
			name:    "android phone",
			ua:      "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Mobile Safari/537.36",
			device:  DeviceMobile,
			browser: "chrome",
			os:      "android",
		},
		{
			name:    "android tablet has no mobile token",
			ua:      "Mozilla/5.0 (Linux; Android 13; SM-X710) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			device:  DeviceTablet,
			browser: "chrome",
			os:      "android",
		},
		{
			name:    "ipad",
			ua:      "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/604.1",
			device:  DeviceTablet,
			browser: "safari",
			os:      "ios",
		},
		{
			name:    "firefox on linux",
			ua:      "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
			device:  DeviceDesktop,
			browser: "firefox",
			os:      "linux",
		},
		{
			name:    "edge on mac",
			ua:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36 Edg/124.0",
			device:  DeviceDesktop,
			browser: "edge",
			os:      "macos",
		},
		{
			name:    "empty falls back to desktop unknown",
			ua:      "",
			device:  DeviceDesktop,
			browser: "unknown",
			os:      "unknown",
		},
		{
			name:    "bot",
			ua:      "curl/8.5.0",
			device:  DeviceDesktop,
			browser: "unknown",
			os:      "unknown",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(tc.ua)
			assert.Equal(t, tc.device, c.Device)
			assert.Equal(t, tc.browser, c.Browser)
			assert.Equal(t, tc.os, c.OS)
		})
	}
}
