package nutrition

import "errors"

var ErrImplausibleMeasurements = errors.New("height/weight out of plausible range")

// BMI expects height in centimeters and weight in kilograms.
func BMI(heightCM, weightKG float64) (float64, error) {
	if heightCM <= 0 || weightKG <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	if heightCM < 50 || heightCM > 250 || weightKG < 10 || weightKG > 400 {
		return 0, ErrImplausibleMeasurements
	}

	m := heightCM / 100.0
	return weightKG / (m * m), nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25.0:
		return "normal"
	case bmi < 30.0:
		return "overweight"
	default:
		return "obese"
	}
}
