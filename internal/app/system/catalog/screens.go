package catalog

import (
	"github.com/dalemusser/studyshare/internal/domain/models"
)

// Action is a per-item operation offered by a screen's menu.
type Action string

const (
	ActionView     Action = "view"
	ActionDownload Action = "download"
	ActionShare    Action = "share"
	ActionDelete   Action = "delete"
)

// ParseAction maps a string onto a known Action.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionView, ActionDownload, ActionShare, ActionDelete:
		return Action(s), true
	}
	return "", false
}

// ChipMode selects which predicate a screen's chips use.
type ChipMode string

const (
	ChipTags      ChipMode = "tags"      // tag containment
	ChipSubstring ChipMode = "substring" // verbatim match in name/description
)

// Screen parameterizes one catalog list: which collection it reads, the
// server-side tag filter, the chips it offers and the actions in its menu.
type Screen struct {
	Key        string            `json:"key"`
	Title      string            `json:"title"`
	Collection models.Collection `json:"collection"`
	ServerTag  string            `json:"server_tag,omitempty"`
	Limit      int64             `json:"limit,omitempty"`
	Chips      []string          `json:"chips,omitempty"`
	ChipMode   ChipMode          `json:"chip_mode"`
	Actions    []Action          `json:"actions"`
}

// Query returns the backend query this screen issues.
func (s Screen) Query() Query {
	return Query{Collection: s.Collection, Tag: s.ServerTag, Limit: s.Limit}
}

// Allows reports whether a is in the screen's menu.
func (s Screen) Allows(a Action) bool {
	for _, x := range s.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// NewStore returns a Store wired with the screen's chip predicate.
func (s Screen) NewStore() *Store {
	if s.ChipMode == ChipSubstring {
		return NewStore(WithChipPredicate(MatchesAnySubstring))
	}
	return NewStore()
}

// Screens lists every catalog screen in navigation order.
var Screens = []Screen{
	{
		Key:        "home",
		Title:      "Recent Files",
		Collection: models.CollectionDocuments,
		Limit:      10,
		Chips:      models.HomeTags,
		ChipMode:   ChipTags,
		Actions:    []Action{ActionView, ActionDownload},
	},
	{
		Key:        "notes",
		Title:      "Notes",
		Collection: models.CollectionDocuments,
		ServerTag:  models.TagNotes,
		ChipMode:   ChipTags,
		Actions:    []Action{ActionDownload},
	},
	{
		Key:        "papers",
		Title:      "Previous Year Papers",
		Collection: models.CollectionDocuments,
		ServerTag:  models.TagPreviousPapers,
		Chips:      models.PaperYears,
		ChipMode:   ChipSubstring,
		Actions:    []Action{ActionDownload, ActionShare},
	},
	{
		Key:        "mst",
		Title:      "MST Papers",
		Collection: models.CollectionDocuments,
		ServerTag:  models.TagMST,
		Chips:      models.MSTSemesters,
		ChipMode:   ChipSubstring,
		Actions:    []Action{ActionDownload, ActionShare},
	},
	{
		Key:        "notices",
		Title:      "Notices",
		Collection: models.CollectionNotices,
		ChipMode:   ChipTags,
		Actions:    []Action{ActionView, ActionDelete},
	},
	{
		Key:        "requests",
		Title:      "Requests",
		Collection: models.CollectionRequests,
		ChipMode:   ChipTags,
		Actions:    []Action{ActionDelete},
	},
}

// LookupScreen finds a screen by key.
func LookupScreen(key string) (Screen, bool) {
	for _, s := range Screens {
		if s.Key == key {
			return s, true
		}
	}
	return Screen{}, false
}
