package show

// ReactionKind names a user action that may have a phrase attached.
type ReactionKind string

const (
	ReactionFavorite ReactionKind = "favorite"
	ReactionSkip     ReactionKind = "skip"
	ReactionPause    ReactionKind = "pause"
	ReactionPlay     ReactionKind = "play"
	ReactionMute     ReactionKind = "mute"
	ReactionUnmute   ReactionKind = "unmute"
)

// Source credits something the show's script drew on.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Host describes the DJ presenting the show.
type Host struct {
	Name     string `json:"name"`
	Language string `json:"voiceLanguage,omitempty"`
	Engine   string `json:"voiceEngine,omitempty"`
}

// Show is the full script and playlist of one session. It is not modified
// once built; items are only reachable through copies.
type Show struct {
	Title      string
	IntroText  string
	OutroText  string
	ArtworkRef string
	Host       Host
	Sources    []Source

	items     []Item
	reactions map[ReactionKind]string
}

func New(title, intro, outro string, items []Item, reactions map[ReactionKind]string) *Show {
	s := &Show{
		Title:     title,
		IntroText: intro,
		OutroText: outro,
		items:     append([]Item(nil), items...),
		reactions: make(map[ReactionKind]string, len(reactions)),
	}
	for k, v := range reactions {
		if v != "" {
			s.reactions[k] = v
		}
	}
	return s
}

func (s *Show) Len() int { return len(s.items) }

func (s *Show) Item(i int) Item { return s.items[i] }

// Items returns a copy of the playlist.
func (s *Show) Items() []Item {
	return append([]Item(nil), s.items...)
}

// Reaction returns the phrase for k, if the show has one.
func (s *Show) Reaction(k ReactionKind) (string, bool) {
	text, ok := s.reactions[k]
	return text, ok
}

// Tracks returns the refs of every track item, in order.
func (s *Show) Tracks() []string {
	var refs []string
	for _, it := range s.items {
		if t, ok := it.(Track); ok {
			refs = append(refs, t.Ref)
		}
	}
	return refs
}
