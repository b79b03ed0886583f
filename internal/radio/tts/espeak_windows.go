//go:build windows

package tts

import (
	"os"
	"path/filepath"
)

// espeakCandidates also tries the default installer location, which the
// eSpeak NG msi does not add to PATH.
func espeakCandidates() []string {
	candidates := []string{"espeak-ng.exe", "espeak.exe"}
	if dir := os.Getenv("ProgramFiles"); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "eSpeak NG", "espeak-ng.exe"))
	}
	return candidates
}
