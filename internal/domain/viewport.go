package domain

// RenderMode is what the map draws at a given zoom: one of the aggregated
// levels or individual markers.
type RenderMode string

const (
	ModeExtraLarge RenderMode = "extraLarge"
	ModeLarge      RenderMode = "large"
	ModeMedium     RenderMode = "medium"
	ModeSmall      RenderMode = "small"
	ModeMarkers    RenderMode = "markers"
)

// Level returns the LOD level drawn in this mode. ok is false for markers.
func (m RenderMode) Level() (_ LODLevel, ok bool) {
	switch m {
	case ModeExtraLarge:
		return LevelExtraLarge, true
	case ModeLarge:
		return LevelLarge, true
	case ModeMedium:
		return LevelMedium, true
	case ModeSmall:
		return LevelSmall, true
	default:
		return "", false
	}
}
