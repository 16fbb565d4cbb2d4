package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/pitchbase/pkg/errors"
)

var (
	// ErrProfileNotFound indicates no profile exists for the caller's identity.
	ErrProfileNotFound = apperrors.New("PROFILE_NOT_FOUND", "Profile not found", http.StatusNotFound)

	// ErrProfileBanned is returned for every profile-scoped operation on a banned profile.
	ErrProfileBanned = apperrors.New("PROFILE_BANNED", "Profile is banned", http.StatusForbidden)

	// ErrProfileConflict means a concurrent sign-in created the profile but it could not be re-read.
	ErrProfileConflict = apperrors.New("PROFILE_CONFLICT", "Profile could not be resolved, please retry", http.StatusConflict)

	// ErrOrganizationNotFound covers both a missing organization and one the caller may not see.
	ErrOrganizationNotFound = apperrors.New("ORGANIZATION_NOT_FOUND", "Organization not found", http.StatusNotFound)

	// ErrMembershipNotFound is returned by the ledger when no membership row matches.
	ErrMembershipNotFound = errors.New("membership ledger: membership not found")
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate")
}
