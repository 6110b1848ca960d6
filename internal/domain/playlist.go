package domain

import "strings"

// AssetOption carries per-asset playback flags.
type AssetOption struct {
	Main bool `json:"main"`
}

// AssetEntry is one media item inside a signage playlist. Filename is the
// playlist key and is compared case-insensitively.
type AssetEntry struct {
	Filename     string      `json:"filename"`
	Duration     int         `json:"duration"` // seconds
	Selected     bool        `json:"selected"`
	Option       AssetOption `json:"option"`
	DragSelected bool        `json:"dragSelected"`
	Fullscreen   bool        `json:"fullscreen"`
	Expired      bool        `json:"expired"`
	Deleted      bool        `json:"deleted"`
}

// Playlist is the remote playlist document as read from the signage server.
type Playlist struct {
	Name   string       `json:"name"`
	Assets []AssetEntry `json:"assets"`
}

// NewImageAsset returns the playlist entry used for the rendered METAR image.
func NewImageAsset(filename string, durationSeconds int) AssetEntry {
	return AssetEntry{
		Filename:   filename,
		Duration:   durationSeconds,
		Selected:   true,
		Fullscreen: true,
	}
}

// MergeAsset returns a new asset list in which every entry whose filename
// matches entry.Filename (case-insensitively) has been removed and entry has
// been appended. The relative order of the other entries is kept and current
// is left untouched, so applying the merge twice equals applying it once.
func MergeAsset(current []AssetEntry, entry AssetEntry) []AssetEntry {
	merged := make([]AssetEntry, 0, len(current)+1)
	for _, a := range current {
		if strings.EqualFold(a.Filename, entry.Filename) {
			continue
		}
		merged = append(merged, a)
	}
	return append(merged, entry)
}

// AssetFilenames lists the filenames of assets in playlist order.
func AssetFilenames(assets []AssetEntry) []string {
	names := make([]string, 0, len(assets))
	for _, a := range assets {
		names = append(names, a.Filename)
	}
	return names
}
