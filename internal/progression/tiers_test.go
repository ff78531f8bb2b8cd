package progression

import "testing"

func TestLevelFor(t *testing.T) {
	cases := []struct {
		points int
		level  int
		title  string
	}{
		{0, 0, "Newbie"},
		{199, 0, "Newbie"},
		{200, 1, "Newbie"},
		{999, 4, "Newbie"},
		{1000, 5, "Newbie"},
		{1011, 5, "Apprentice"},
		{1999, 9, "Apprentice"},
		{2000, 10, "Apprentice"},
		{2001, 10, "Pro"},
		{3499, 14, "Pro"},
		{3501, 15, "Ace"},
		{5001, 20, "Premier"},
		{7501, 25, "Superstar"},
		{10001, 30, "Guru"},
		{12501, 35, "King"},
		{99999, 209, "King"},
	}

	for _, c := range cases {
		level, title := LevelFor(c.points)
		if level != c.level || title != c.title {
			t.Errorf("LevelFor(%d) = (%d, %s), want (%d, %s)",
				c.points, level, title, c.level, c.title)
		}
	}
}

func TestLevelForNegativePoints(t *testing.T) {
	level, title := LevelFor(-50)
	if level != 0 || title != "Newbie" {
		t.Errorf("LevelFor(-50) = (%d, %s), want (0, Newbie)", level, title)
	}
}

func TestCalcProgress(t *testing.T) {
	cases := []struct {
		points    int
		remaining int
		tierSize  int
	}{
		{0, 200, 200},
		{150, 50, 200},
		{199, 1, 200},
		{200, 200, 200},
		{1011, 189, 200},
		{2100, 200, 300},
		{3600, 200, 300},
		{5200, 300, 500},
		{12600, 400, 500},
	}

	for _, c := range cases {
		got := CalcProgress(c.points)
		if got.Remaining != c.remaining || got.TierSize != c.tierSize {
			t.Errorf("CalcProgress(%d) = {%d, %d}, want {%d, %d}",
				c.points, got.Remaining, got.TierSize, c.remaining, c.tierSize)
		}
	}
}

// A tier boundary grants exactly the level the next tier starts at, and
// the remaining distance resets to a full step.
func TestTierBoundaries(t *testing.T) {
	boundaries := []struct {
		floor int
		step  int
	}{
		{1000, 200}, {2000, 200}, {3500, 300}, {5000, 300},
		{7500, 500}, {10000, 500}, {12500, 500},
	}

	for _, b := range boundaries {
		progress := CalcProgress(b.floor)
		if progress.Remaining != b.step {
			t.Errorf("CalcProgress(%d).Remaining = %d, want full step %d",
				b.floor, progress.Remaining, b.step)
		}

		below, _ := LevelFor(b.floor - 1)
		at, _ := LevelFor(b.floor)
		if at <= below {
			t.Errorf("level did not advance across boundary %d: %d -> %d", b.floor, below, at)
		}
	}
}
