package userrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/infrastructure/database"
	"github.com/blockmarketai/marketplace/pkg/currency"
)

const userColumns = `id, email, username, wallet_address, password_hash, bio, avatar,
	is_verified, role, total_sales, total_purchases, total_earnings,
	joined_at, last_login_at, created_at, updated_at`

type userRepository struct {
	db       *sql.DB
	logger   zerolog.Logger
	currency *currency.CurrencyUtils
}

func New(db *database.DBManager, logger zerolog.Logger) IUserRepository {
	return &userRepository{
		db:       db.Db,
		logger:   logger,
		currency: currency.NewCurrencyUtils(),
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, username, wallet_address, password_hash, bio, is_verified, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		user.Email, user.Username, user.WalletAddress, user.PasswordHash,
		user.Bio, user.IsVerified, user.Role,
	)

	created, err := scanUser(row)
	if err != nil {
		if conflict := translateUniqueViolation(err); conflict != nil {
			return nil, conflict
		}
		r.logger.Error().Err(err).Str("username", user.Username).Msg("Failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("User")
		}
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to get user by ID")
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

func (r *userRepository) FindByIdentifier(ctx context.Context, identifier, walletAddress string) (*domain.User, error) {
	var row *sql.Row
	switch {
	case walletAddress != "":
		row = r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE wallet_address = $1`, walletAddress)
	case strings.Contains(identifier, "@"):
		row = r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, identifier)
	default:
		row = r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, identifier)
	}

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("User")
		}
		r.logger.Error().Err(err).Msg("Failed to find user by identifier")
		return nil, fmt.Errorf("failed to find user by identifier: %w", err)
	}

	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Email != nil {
		addSet("email", *update.Email)
	}
	if update.Username != nil {
		addSet("username", *update.Username)
	}
	if update.Bio != nil {
		addSet("bio", *update.Bio)
	}
	if update.Avatar != nil {
		addSet("avatar", *update.Avatar)
	}
	if len(sets) == 0 {
		return nil, domain.NewValidationError("No valid updates provided")
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("User")
		}
		if conflict := translateUniqueViolation(err); conflict != nil {
			return nil, conflict
		}
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to update profile")
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

func (r *userRepository) RecordLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to record login")
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

func (r *userRepository) ApplyTransactionEffect(ctx context.Context, dbtx DBTX, id uuid.UUID, role domain.TransactionRole, amount, fee float64) error {
	var err error
	switch role {
	case domain.RoleBuyer:
		_, err = dbtx.ExecContext(ctx, `
			UPDATE users SET total_purchases = total_purchases + 1, updated_at = now()
			WHERE id = $1`, id)
	case domain.RoleSeller:
		_, err = dbtx.ExecContext(ctx, `
			UPDATE users SET total_sales = total_sales + 1,
				total_earnings = total_earnings + $2, updated_at = now()
			WHERE id = $1`, id, r.currency.NetAmount(amount, fee))
	default:
		return fmt.Errorf("unknown transaction role: %s", role)
	}

	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Str("role", string(role)).Msg("Failed to apply transaction effect")
		return fmt.Errorf("failed to apply transaction effect: %w", err)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, page domain.Page) ([]*domain.User, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY %s %s LIMIT $1 OFFSET $2`,
		userColumns, sortColumn(page.Sort), sortOrder(page.Order))

	rows, err := r.db.QueryContext(ctx, query, page.Limit, page.Offset())
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to list users")
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, total, rows.Err()
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to delete user")
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("User")
	}
	return nil
}

func (r *userRepository) Stats(ctx context.Context, id uuid.UUID) (*domain.UserStats, error) {
	stats := &domain.UserStats{}

	err := r.db.QueryRowContext(ctx, `
		SELECT count(*), coalesce(sum(downloads), 0), coalesce(sum(views), 0), coalesce(avg(rating), 0)
		FROM datasets WHERE seller_id = $1 AND is_active = TRUE`, id).
		Scan(
			&stats.Datasets.TotalListings,
			&stats.Datasets.TotalDownloads,
			&stats.Datasets.TotalViews,
			&stats.Datasets.AverageRating,
		)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to aggregate dataset stats")
		return nil, fmt.Errorf("failed to aggregate dataset stats: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT
			count(*) FILTER (WHERE buyer_id = $1),
			coalesce(sum(amount) FILTER (WHERE buyer_id = $1), 0),
			count(*) FILTER (WHERE seller_id = $1),
			coalesce(sum(amount) FILTER (WHERE seller_id = $1), 0)
		FROM transactions
		WHERE status = 'completed' AND (buyer_id = $1 OR seller_id = $1)`, id).
		Scan(
			&stats.Transactions.TotalPurchases,
			&stats.Transactions.TotalSpent,
			&stats.Transactions.TotalSales,
			&stats.Transactions.TotalEarned,
		)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to aggregate transaction stats")
		return nil, fmt.Errorf("failed to aggregate transaction stats: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.WalletAddress, &user.PasswordHash,
		&user.Bio, &user.Avatar, &user.IsVerified, &user.Role,
		&user.TotalSales, &user.TotalPurchases, &user.TotalEarnings,
		&user.JoinedAt, &lastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}
	return &user, nil
}

// translateUniqueViolation maps a Postgres 23505 to a Conflict naming the
// duplicated field, so clients see "Email already exists" instead of a
// constraint name.
func translateUniqueViolation(err error) *domain.Error {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pqErr.Constraint, "email"):
		return domain.NewConflictError("Email already exists")
	case strings.Contains(pqErr.Constraint, "username"):
		return domain.NewConflictError("Username already exists")
	case strings.Contains(pqErr.Constraint, "wallet"):
		return domain.NewConflictError("Wallet address already exists")
	}
	return domain.NewConflictError("User already exists")
}

func sortColumn(sort string) string {
	switch sort {
	case "username", "email", "total_sales", "total_purchases", "total_earnings", "created_at":
		return sort
	case "createdAt", "":
		return "created_at"
	default:
		return "created_at"
	}
}

func sortOrder(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}
