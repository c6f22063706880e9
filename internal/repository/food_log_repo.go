package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/NutriScanBack/internal/models"
)

const foodLogColumns = `
	id, user_id, food_name, serving_size, calories, protein_g, carbs_g, fat_g, fiber_g,
	meal_type, food_image_url, logged_at, created_at`

type CreateFoodLogInput struct {
	UserID       int64
	FoodName     string
	ServingSize  *string
	Calories     *float64
	ProteinG     *float64
	CarbsG       *float64
	FatG         *float64
	FiberG       *float64
	MealType     string
	FoodImageURL *string
	LoggedAt     time.Time
}

type FoodLogRepository struct {
	db DBTX
}

func NewFoodLogRepository(db DBTX) *FoodLogRepository {
	return &FoodLogRepository{db: db}
}

func scanFoodLog(row pgx.Row) (*models.FoodLog, error) {
	var log models.FoodLog
	err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.FoodName,
		&log.ServingSize,
		&log.Calories,
		&log.ProteinG,
		&log.CarbsG,
		&log.FatG,
		&log.FiberG,
		&log.MealType,
		&log.FoodImageURL,
		&log.LoggedAt,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *FoodLogRepository) Create(ctx context.Context, in CreateFoodLogInput) (*models.FoodLog, error) {
	query := `
		INSERT INTO food_logs (id, user_id, food_name, serving_size, calories, protein_g, carbs_g, fat_g, fiber_g,
			meal_type, food_image_url, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + foodLogColumns
	return scanFoodLog(r.db.QueryRow(ctx, query,
		uuid.New(),
		in.UserID,
		in.FoodName,
		in.ServingSize,
		in.Calories,
		in.ProteinG,
		in.CarbsG,
		in.FatG,
		in.FiberG,
		in.MealType,
		in.FoodImageURL,
		in.LoggedAt,
	))
}

// ListByUserBetween returns logs with from <= logged_at < to, oldest first.
func (r *FoodLogRepository) ListByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.FoodLog, error) {
	query := `
		SELECT ` + foodLogColumns + `
		FROM food_logs
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		ORDER BY logged_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.FoodLog, 0)
	for rows.Next() {
		log, err := scanFoodLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// Delete removes a log owned by userID and returns it so the caller can
// clean up the stored photo. pgx.ErrNoRows means nothing matched.
func (r *FoodLogRepository) Delete(ctx context.Context, userID int64, id uuid.UUID) (*models.FoodLog, error) {
	query := `DELETE FROM food_logs WHERE id = $1 AND user_id = $2 RETURNING ` + foodLogColumns
	return scanFoodLog(r.db.QueryRow(ctx, query, id, userID))
}
