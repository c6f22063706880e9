package nutrition

import (
	"errors"
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); got != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestAggregateTreatsMissingAsZero(t *testing.T) {
	entries := []Entry{
		{MealType: "breakfast", Calories: f(350), ProteinG: f(12), CarbsG: f(40), FatG: f(14), FiberG: f(3)},
		{MealType: "lunch", Calories: f(500), ProteinG: f(20)},
		{MealType: "snack"},
	}

	got := Aggregate(entries)
	want := Totals{Calories: 850, Protein: 32, Carbs: 40, Fat: 14, Fiber: 3}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestByMealType(t *testing.T) {
	entries := []Entry{
		{MealType: "lunch", Calories: f(300)},
		{MealType: "lunch", Calories: f(200), ProteinG: f(10)},
		{Calories: f(90)},
	}

	got := ByMealType(entries)
	if got["lunch"].Calories != 500 || got["lunch"].Protein != 10 {
		t.Fatalf("unexpected lunch totals: %+v", got["lunch"])
	}
	if got["other"].Calories != 90 {
		t.Fatalf("expected untyped entry under other, got %+v", got["other"])
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	plan := Plan{DailyCalories: 2000, DailyProteinG: 120, DailyCarbsG: 250, DailyFatG: 55}

	under := RemainingFor(plan, Totals{Calories: 1500, Protein: 100, Carbs: 100, Fat: 20})
	if under != (Remaining{Calories: 500, Protein: 20, Carbs: 150, Fat: 35}) {
		t.Fatalf("unexpected remaining: %+v", under)
	}

	over := RemainingFor(plan, Totals{Calories: 2600, Protein: 180, Carbs: 300, Fat: 90})
	if over != (Remaining{}) {
		t.Fatalf("expected zero remaining when over plan, got %+v", over)
	}
}

func TestProgressPercent(t *testing.T) {
	plan := Plan{DailyCalories: 2000}

	if got := ProgressPercent(plan, Totals{Calories: 500}); got != 25 {
		t.Fatalf("expected 25%%, got %v", got)
	}
	if got := ProgressPercent(plan, Totals{Calories: 4000}); got != 100 {
		t.Fatalf("expected progress capped at 100, got %v", got)
	}
	if got := ProgressPercent(Plan{}, Totals{Calories: 500}); got != 0 {
		t.Fatalf("expected 0 without a plan, got %v", got)
	}
}

func TestBMI(t *testing.T) {
	bmi, err := BMI(175, 75)
	if err != nil {
		t.Fatalf("BMI: %v", err)
	}
	if math.Abs(bmi-24.49) > 0.01 {
		t.Fatalf("expected BMI ~24.49, got %v", bmi)
	}
	if got := BMICategory(bmi); got != "normal" {
		t.Fatalf("expected normal, got %q", got)
	}

	if _, err := BMI(20, 75); !errors.Is(err, ErrImplausibleMeasurements) {
		t.Fatalf("expected ErrImplausibleMeasurements, got %v", err)
	}
	if _, err := BMI(0, 75); err == nil {
		t.Fatal("expected error for zero height")
	}
}
