package repositories

import (
	"context"
	"testing"
	"time"

	"ptime/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ProfileRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      ProfileRepository
	employers EmployerRepository
	profileID uuid.UUID
	context   context.Context
}

func (suite *ProfileRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewProfileRepository(mock)
	suite.employers = NewEmployerRepository(mock)
	suite.profileID = uuid.New()
	suite.context = context.Background()
}

func (suite *ProfileRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestProfileRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProfileRepoTestSuite))
}

func (suite *ProfileRepoTestSuite) profileRow() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "email", "role", "created_at", "updated_at"}).
		AddRow(suite.profileID, "owner@example.com", models.RoleEmployer, time.Now(), time.Now())
}

func (suite *ProfileRepoTestSuite) TestCreate_Success() {
	profile := &models.Profile{
		ID:    suite.profileID,
		Email: "owner@example.com",
		Role:  models.RoleEmployer,
	}

	suite.mock.ExpectExec(`INSERT INTO user_profiles`).
		WithArgs(profile.ID, profile.Email, profile.Role).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, profile)
	assert.NoError(suite.T(), err)
}

func (suite *ProfileRepoTestSuite) TestGetByEmail_Success() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM user_profiles`).
		WithArgs("owner@example.com").
		WillReturnRows(suite.profileRow())

	profile, err := suite.repo.GetByEmail(suite.context, "owner@example.com")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.profileID, profile.ID)
	assert.Equal(suite.T(), models.RoleEmployer, profile.Role)
}

func (suite *ProfileRepoTestSuite) TestGetByEmail_NoRows() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM user_profiles`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	profile, err := suite.repo.GetByEmail(suite.context, "ghost@example.com")
	assert.Nil(suite.T(), profile)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}

func (suite *ProfileRepoTestSuite) TestGetByID_Success() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM user_profiles`).
		WithArgs(suite.profileID).
		WillReturnRows(suite.profileRow())

	profile, err := suite.repo.GetByID(suite.context, suite.profileID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "owner@example.com", profile.Email)
}

func (suite *ProfileRepoTestSuite) TestEmployerExists_True() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM employers`).
		WithArgs(suite.profileID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "display_name", "email", "created_at"}).
			AddRow(suite.profileID, "owner", "owner@example.com", time.Now()))

	exists, err := suite.employers.Exists(suite.context, suite.profileID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), exists)
}

func (suite *ProfileRepoTestSuite) TestEmployerExists_NoRowsIsFalse() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM employers`).
		WithArgs(suite.profileID).
		WillReturnError(pgx.ErrNoRows)

	exists, err := suite.employers.Exists(suite.context, suite.profileID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), exists)
}
