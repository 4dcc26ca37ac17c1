package sportscam

const (
	// playerActivityCap is the most the player count contributes
	playerActivityCap = 0.3
	// ballActivity is added when the ball is visible
	ballActivity = 0.2
	// motionActivity is scaled by the fraction of players moving fast
	motionActivity = 0.5
)

// activityScore rates how much is happening on a frame in the range [0,1]
// from the number of players, ball visibility and the share of players
// moving faster than fastSpeed
func activityScore(players int, ball bool, speeds map[int]float64, fastSpeed float64) float64 {

	score := min(float64(players)/10, playerActivityCap)

	if ball {
		score += ballActivity
	}

	if players > 0 {
		fast := 0
		for _, v := range speeds {
			if v > fastSpeed {
				fast++
			}
		}

		score += motionActivity * min(float64(fast)/float64(players), 1)
	}

	return min(score, 1)
}
