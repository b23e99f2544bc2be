package planet

// Habit tags.
const (
	TagEarthLike = "Earth-like"
	TagGasGiant  = "Gas Giant"
	TagTooHot    = "Too Hot"
	TagTooCold   = "Too Cold"
	TagUnknown   = "Unknown"
)

// HabitTag gives a one-word impression of rec. Without both radius and
// mass it is always TagUnknown.
func HabitTag(rec Record) string {
	if !known(rec.Radius) || !known(rec.Mass) {
		return TagUnknown
	}
	r, m := *rec.Radius, *rec.Mass
	switch {
	case r >= 0.8 && r <= 1.8 && m >= 0.5 && m <= 5:
		return TagEarthLike
	case r > 5:
		return TagGasGiant
	case known(rec.TeqK) && *rec.TeqK > 400:
		return TagTooHot
	case known(rec.TeqK) && *rec.TeqK < 180:
		return TagTooCold
	default:
		return TagUnknown
	}
}

//Personal.AI order the ending
