package game

// Ruleset carries the numbers that shifted between editions of the
// table rules. Potency ran 1..10 in the early edition and -2..+2 in the
// current one, so the range is configuration rather than a constant.
type Ruleset struct {
	StartingNerve int
	MaxNerve      int
	PotencyMin    int
	PotencyMax    int
	MaxPlayers    int
}

func DefaultRuleset() Ruleset {
	return Ruleset{
		StartingNerve: 8,
		MaxNerve:      8,
		PotencyMin:    -2,
		PotencyMax:    2,
		MaxPlayers:    5,
	}
}

func (r Ruleset) validPotency(potency int) bool {
	return potency >= r.PotencyMin && potency <= r.PotencyMax
}

func clampStat(value int) int {
	if value < statMin {
		return statMin
	}
	if value > statMax {
		return statMax
	}
	return value
}
