package pisignage

import (
	"strconv"
	"time"

	"github.com/couchcryptid/metar-signage/internal/domain"
)

// Defaults for the display group the image is deployed to.
const (
	DefaultGroupID      = "6329aec82e6eea773f2373a6"
	DefaultInstallation = "flightclub502"
	DefaultGroupName    = "default"
	DefaultOrientation  = "landscape"
	DefaultResolution   = "auto"
	DefaultBackground   = "#000"
	customLayoutAsset   = "custom_layout.html"
)

// DeployConfig holds the group settings sent with every deploy command.
// Build it once with DefaultDeployConfig and override fields as needed.
type DeployConfig struct {
	GroupID                  string
	GroupName                string
	Installation             string
	Playlist                 string
	Orientation              string // "landscape" or "portrait"
	Resolution               string
	BackgroundColor          string
	ImageLetterboxed         bool
	ResizeAssets             bool
	URLReloadDisable         bool
	LoadPlaylistOnCompletion bool
	AudioVolume              int
	OMXVolume                int
}

// DefaultDeployConfig returns the settings the signage group has been
// running with. LoadPlaylistOnCompletion makes players pick up the new
// playlist once the current rotation ends instead of cutting in.
func DefaultDeployConfig(groupID, playlist string) DeployConfig {
	if groupID == "" {
		groupID = DefaultGroupID
	}
	return DeployConfig{
		GroupID:                  groupID,
		GroupName:                DefaultGroupName,
		Installation:             DefaultInstallation,
		Playlist:                 playlist,
		Orientation:              DefaultOrientation,
		Resolution:               DefaultResolution,
		BackgroundColor:          DefaultBackground,
		ImageLetterboxed:         true,
		ResizeAssets:             true,
		URLReloadDisable:         true,
		LoadPlaylistOnCompletion: true,
		AudioVolume:              50,
		OMXVolume:                100,
	}
}

// Deploy request wire types.

type toggle struct {
	Enable bool `json:"enable"`
}

type sleepSettings struct {
	Enable  bool   `json:"enable"`
	OnTime  string `json:"ontime"`
	OffTime string `json:"offtime"`
}

type clockSettings struct {
	Enable   bool   `json:"enable"`
	Format   string `json:"format"`
	Position string `json:"position"`
}

type monitorArrangement struct {
	Mode    string `json:"mode"`
	Reverse bool   `json:"reverse"`
}

type emergencyMessage struct {
	Msg  string `json:"msg"`
	HPos string `json:"hPos"`
	VPos string `json:"vPos"`
}

type adSettings struct {
	AdPlaylist bool `json:"adPlaylist"`
	AdCount    int  `json:"adCount"`
	AdInterval int  `json:"adInterval"`
}

type audioSettings struct {
	Enable bool `json:"enable"`
	Random bool `json:"random"`
	Volume int  `json:"volume"`
}

type playlistSettings struct {
	Ads   adSettings    `json:"ads"`
	Audio audioSettings `json:"audio"`
}

type groupPlaylist struct {
	Name            string           `json:"name"`
	Settings        playlistSettings `json:"settings"`
	SkipForSchedule bool             `json:"skipForSchedule"`
	PlType          string           `json:"plType"`
}

type rssSettings struct {
	Enable    bool    `json:"enable"`
	Link      *string `json:"link"`
	FeedDelay int     `json:"feedDelay"`
}

type tickerSettings struct {
	Enable    bool        `json:"enable"`
	Behavior  string      `json:"behavior"`
	TextSpeed int         `json:"textSpeed"`
	RSS       rssSettings `json:"rss"`
}

type deployRequest struct {
	ID                       string             `json:"_id"`
	Name                     string             `json:"name"`
	Installation             string             `json:"installation"`
	Sleep                    sleepSettings      `json:"sleep"`
	Reboot                   toggle             `json:"reboot"`
	KioskUI                  toggle             `json:"kioskUi"`
	ShowClock                clockSettings      `json:"showClock"`
	MonitorArrangement       monitorArrangement `json:"monitorArrangement"`
	EmergencyMessage         emergencyMessage   `json:"emergencyMessage"`
	Playlists                []groupPlaylist    `json:"playlists"`
	DeployedPlaylists        []groupPlaylist    `json:"deployedPlaylists"`
	Assets                   []string           `json:"assets"`
	AssetsValidity           []string           `json:"assetsValidity"`
	Labels                   []string           `json:"labels"`
	Ticker                   tickerSettings     `json:"ticker"`
	DeployedTicker           tickerSettings     `json:"deployedTicker"`
	Orientation              string             `json:"orientation"`
	Resolution               string             `json:"resolution"`
	SignageBackgroundColor   string             `json:"signageBackgroundColor"`
	ImageLetterboxed         bool               `json:"imageLetterboxed"`
	ResizeAssets             bool               `json:"resizeAssets"`
	URLReloadDisable         bool               `json:"urlReloadDisable"`
	LoadPlaylistOnCompletion bool               `json:"loadPlaylistOnCompletion"`
	OMXVolume                int                `json:"omxVolume"`
	SelectedVideoPlayer      string             `json:"selectedVideoPlayer"`
	MPVAudioDelay            string             `json:"mpvAudioDelay"`
	CreatedAt                string             `json:"createdAt"`
	LastDeployed             string             `json:"lastDeployed"`
	Deploy                   bool               `json:"deploy"`
}

// newDeployRequest builds the group update that activates playlist. The
// asset list names every playlist file plus the playlist document and the
// layout file the player needs.
func newDeployRequest(cfg DeployConfig, playlist domain.Playlist, now time.Time) deployRequest {
	assets := domain.AssetFilenames(playlist.Assets)
	assets = append(assets, "__"+playlist.Name+".json", customLayoutAsset)

	pl := groupPlaylist{
		Name: playlist.Name,
		Settings: playlistSettings{
			Ads:   adSettings{AdCount: 1, AdInterval: 60},
			Audio: audioSettings{Volume: cfg.AudioVolume},
		},
		PlType: "regular",
	}
	ticker := tickerSettings{Behavior: "scroll", TextSpeed: 3, RSS: rssSettings{FeedDelay: 10}}

	return deployRequest{
		ID:                       cfg.GroupID,
		Name:                     cfg.GroupName,
		Installation:             cfg.Installation,
		Sleep:                    sleepSettings{OnTime: "07:00", OffTime: "21:00"},
		ShowClock:                clockSettings{Format: "12", Position: "bottom"},
		MonitorArrangement:       monitorArrangement{Mode: "mirror"},
		EmergencyMessage:         emergencyMessage{HPos: "middle", VPos: "middle"},
		Playlists:                []groupPlaylist{pl},
		DeployedPlaylists:        []groupPlaylist{pl},
		Assets:                   assets,
		AssetsValidity:           []string{},
		Labels:                   []string{},
		Ticker:                   ticker,
		DeployedTicker:           ticker,
		Orientation:              cfg.Orientation,
		Resolution:               cfg.Resolution,
		SignageBackgroundColor:   cfg.BackgroundColor,
		ImageLetterboxed:         cfg.ImageLetterboxed,
		ResizeAssets:             cfg.ResizeAssets,
		URLReloadDisable:         cfg.URLReloadDisable,
		LoadPlaylistOnCompletion: cfg.LoadPlaylistOnCompletion,
		OMXVolume:                cfg.OMXVolume,
		SelectedVideoPlayer:      "default",
		MPVAudioDelay:            "0",
		CreatedAt:                now.UTC().Format("2006-01-02T15:04:05.000000Z"),
		LastDeployed:             strconv.FormatInt(now.UnixMilli(), 10),
		Deploy:                   true,
	}
}
