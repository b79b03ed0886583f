//go:build !windows

package tts

// espeakCandidates lists executable names to look up on PATH
func espeakCandidates() []string {
	return []string{"espeak-ng", "espeak"}
}
