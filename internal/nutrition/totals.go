package nutrition

// Entry is the nutrient snapshot of one logged food. Nil values were not
// reported by the classifier and count as zero.
type Entry struct {
	MealType string
	Calories *float64
	ProteinG *float64
	CarbsG   *float64
	FatG     *float64
	FiberG   *float64
}

type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

type Remaining struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (t Totals) add(e Entry) Totals {
	t.Calories += value(e.Calories)
	t.Protein += value(e.ProteinG)
	t.Carbs += value(e.CarbsG)
	t.Fat += value(e.FatG)
	t.Fiber += value(e.FiberG)
	return t
}

func Aggregate(entries []Entry) Totals {
	var totals Totals
	for _, e := range entries {
		totals = totals.add(e)
	}
	return totals
}

// ByMealType sums entries per meal type. Entries without a meal type are
// grouped under "other".
func ByMealType(entries []Entry) map[string]Totals {
	out := make(map[string]Totals)
	for _, e := range entries {
		key := e.MealType
		if key == "" {
			key = "other"
		}
		out[key] = out[key].add(e)
	}
	return out
}

// RemainingFor never returns a negative allowance, even when the day's
// totals exceed the plan.
func RemainingFor(plan Plan, totals Totals) Remaining {
	return Remaining{
		Calories: floorZero(float64(plan.DailyCalories) - totals.Calories),
		Protein:  floorZero(float64(plan.DailyProteinG) - totals.Protein),
		Carbs:    floorZero(float64(plan.DailyCarbsG) - totals.Carbs),
		Fat:      floorZero(float64(plan.DailyFatG) - totals.Fat),
	}
}

func ProgressPercent(plan Plan, totals Totals) float64 {
	if plan.DailyCalories == 0 {
		return 0
	}
	pct := totals.Calories / float64(plan.DailyCalories) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
