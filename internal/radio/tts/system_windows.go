//go:build windows

package tts

import "os/exec"

// platformEngine reports the speech engine built into this OS.
func platformEngine() EngineType {
	if _, err := exec.LookPath("powershell"); err != nil {
		return ""
	}
	return EngineTypeSAPI
}
