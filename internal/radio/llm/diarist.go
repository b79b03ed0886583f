package llm

import (
	"context"
	"fmt"
	"strings"
)

const diarySystemPrompt = `You are a radio DJ writing a short private diary entry after a show.

Write two or three sentences in the first person about how the show went and
what the music said about the listener. Be warm and a little wry.

Output ONLY the entry text. No title, no quotes, no date.

/no_think`

// Diarist writes a DJ's post-show thought with an LLM.
type Diarist struct {
	client *Client
}

func NewDiarist(client *Client) *Diarist {
	return &Diarist{client: client}
}

func (d *Diarist) Think(ctx context.Context, dj string, tracks []string) (string, error) {
	prompt := fmt.Sprintf("DJ: %s\nTracks played tonight: %s", dj, strings.Join(tracks, ", "))
	if len(tracks) == 0 {
		prompt = fmt.Sprintf("DJ: %s\nNo songs got played tonight.", dj)
	}

	text, err := d.client.Generate(ctx, diarySystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.Trim(text, "\"' \n"), nil
}
