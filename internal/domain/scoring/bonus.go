package scoring

import "sort"

// ProjectBonus recomputes provisional 3/2/1 bonus from live BPS and
// re-totals every player as rawTotal - previouslyAppliedBonus + newBonus.
// The first run replaces the upstream's official bonus with an identical
// projection for settled fixtures, so calling it any number of times on
// the same snapshot is a no-op beyond the first.
func ProjectBonus(stats Stats) {
	byFixture := make(map[int][]*PlayerStat)
	for _, st := range stats {
		if st.FixtureID <= 0 {
			continue
		}
		if st.BPS <= 0 && st.Minutes <= 0 {
			continue
		}
		byFixture[st.FixtureID] = append(byFixture[st.FixtureID], st)
	}

	projected := make(map[*PlayerStat]int)
	for _, candidates := range byFixture {
		awardFixtureBonus(candidates, projected)
	}

	for _, st := range stats {
		next := projected[st]
		st.TotalPoints += next - st.Bonus
		st.Bonus = next
	}
}

// awardFixtureBonus walks distinct BPS values from the top. The leaders
// take 3 each; a multi-way tie for first consumes the second slot as
// well. Second place takes 2 each and advances the slot counter by the
// tie size. Third place takes 1 each. Nothing past the third slot scores.
func awardFixtureBonus(candidates []*PlayerStat, projected map[*PlayerStat]int) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].BPS > candidates[j].BPS
	})

	slot := 1
	for i := 0; i < len(candidates) && slot <= 3; {
		j := i
		for j < len(candidates) && candidates[j].BPS == candidates[i].BPS {
			j++
		}
		tied := j - i

		var award int
		switch slot {
		case 1:
			award = 3
			if tied > 1 {
				slot += 2
			} else {
				slot++
			}
		case 2:
			award = 2
			slot += tied
			if slot > 4 {
				slot = 4
			}
		case 3:
			award = 1
			slot++
		}

		for k := i; k < j; k++ {
			projected[candidates[k]] = award
		}
		i = j
	}
}
