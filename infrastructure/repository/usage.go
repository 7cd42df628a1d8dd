// Package repository implements the Postgres-backed collaborators: usage
// accounting and stored Google credentials.
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/ads-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-insights-api/internal/domain"
	"github.com/vfg2006/ads-insights-api/pkg/utils"
)

const usageTable = "report_usage"

// UsageRepository records successful report generations and answers
// monthly-limit checks.
type UsageRepository interface {
	CheckLimit(userID string, monthlyLimit int) (*domain.LimitStatus, error)
	Record(record *domain.UsageRecord) (string, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type usageRepository struct {
	conn *postgres.Connection
}

func NewUsageRepository(conn *postgres.Connection) UsageRepository {
	return &usageRepository{
		conn: conn,
	}
}

// CheckLimit counts this calendar month's generations for the user. The
// counter resets on the first day of the next month.
func (r *usageRepository) CheckLimit(userID string, monthlyLimit int) (*domain.LimitStatus, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	resetsAt := monthStart.AddDate(0, 1, 0)

	query, args, err := squirrel.
		Select("COUNT(*)").
		From(usageTable).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"created_at": monthStart}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building usage count query: %w", err)
	}

	var count int
	if err := r.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return nil, fmt.Errorf("error counting usage: %w", err)
	}

	return &domain.LimitStatus{
		CanGenerate:  count < monthlyLimit,
		CurrentUsage: count,
		Limit:        monthlyLimit,
		ResetsAt:     resetsAt,
	}, nil
}

// Record inserts one usage row and returns its generated ID.
func (r *usageRepository) Record(record *domain.UsageRecord) (string, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return "", fmt.Errorf("error generating usage record id: %w", err)
	}

	query, args, err := squirrel.
		Insert(usageTable).
		Columns("id", "user_id", "kind", "customer_id", "time_range", "campaign_id").
		Values(id, record.UserID, string(record.Kind), record.CustomerID, record.TimeRange, record.CampaignID).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("error building usage insert: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return "", fmt.Errorf("error inserting usage record: %w", err)
	}

	return id, nil
}

// DeleteOlderThan prunes usage rows past the retention horizon.
func (r *usageRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	query, args, err := squirrel.
		Delete(usageTable).
		Where(squirrel.Lt{"created_at": cutoff}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building usage delete: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting old usage records: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}

	return affected, nil
}
