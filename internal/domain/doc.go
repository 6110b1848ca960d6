// Package domain models decoded METAR observations and the signage playlist
// they are published into.
//
// # Data Source
//
// Observations come from the NWS text feed
// (https://tgftp.nws.noaa.gov/data/observations/metar/stations/<ICAO>.TXT)
// or the aviationweather.gov data API. Adapters decode either source into a
// [Report]; nothing in this package parses METAR text.
//
// # METAR Conventions
//
// Wind:
//
//	"24008G22KT" → from 240° true at 8 knots, gusting 22.
//	"VRB03KT" has no direction; "00000KT" is calm.
//	Displayed on a 16-point compass: 105° → "ESE (105)".
//
// Visibility is in statute miles. Sky layers are listed lowest first:
//
//	CLR/SKC  clear
//	FEW      1–2 oktas
//	SCT      3–4 oktas
//	BKN      5–7 oktas   (ceiling)
//	OVC      8 oktas     (ceiling)
//
// Heights are hundreds of feet AGL in the raw group ("OVC045" = 4,500 ft) and
// stored in feet here.
//
// # Flight Rules
//
// The ceiling is the lowest BKN or OVC layer. Categories are checked from the
// best down and the first match wins:
//
//	VFR   visibility ≥ 5 mi and ceiling ≥ 3,000 ft
//	MVFR  visibility ≥ 3 mi and ceiling ≥ 1,000 ft
//	IFR   visibility ≥ 1 mi and ceiling ≥ 500 ft
//	LIFR  below IFR
//
// Without a visibility the category is unknown.
//
// # Playlist Merge
//
// The rendered image always uploads under one filename. [MergeAsset] replaces
// any entry with that name (case-insensitive) by a fresh entry at the end of
// the list, so repeated runs never duplicate the asset.
package domain
