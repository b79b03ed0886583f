//go:build !darwin && !windows

package tts

// platformEngine reports the speech engine built into this OS.
func platformEngine() EngineType {
	return ""
}
