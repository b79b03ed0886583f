//go:build darwin

package tts

import "os/exec"

// platformEngine reports the speech engine built into this OS.
func platformEngine() EngineType {
	if _, err := exec.LookPath("say"); err != nil {
		return ""
	}
	return EngineTypeAVFoundation
}
