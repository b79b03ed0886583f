package show

// Kind is the wire tag of a playlist item.
type Kind string

const (
	KindTrack   Kind = "song"
	KindAdBreak Kind = "ad_break"
	KindJingle  Kind = "jingle"
	KindJoke    Kind = "joke"
)

// Item is one of Track, AdBreak, Jingle or Joke. The set is closed.
type Item interface {
	Kind() Kind
	item()
}

type Track struct {
	Ref        string
	Commentary string
	Genre      string
}

type AdBreak struct {
	Scripts []string
}

type Jingle struct {
	Script string
}

// Joke is fetched when it comes up, not when the show is built.
type Joke struct{}

func (Track) Kind() Kind   { return KindTrack }
func (AdBreak) Kind() Kind { return KindAdBreak }
func (Jingle) Kind() Kind  { return KindJingle }
func (Joke) Kind() Kind    { return KindJoke }

func (Track) item()   {}
func (AdBreak) item() {}
func (Jingle) item()  {}
func (Joke) item()    {}
