package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/pagination"
	"github.com/yukikurage/project-management-api/internal/testutil"
)

type RepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	projects ProjectRepository
	tasks    TaskRepository
	users    UserRepository
	ctx      context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.projects = NewProjectRepository(s.db)
	s.tasks = NewTaskRepository(s.db)
	s.users = NewUserRepository(s.db)
	s.ctx = auth.WithIdentity(context.Background(), auth.Identity{Username: "alice"})
}

func (s *RepositoryTestSuite) createProject(name string) *models.Project {
	project := &models.Project{Name: name}
	s.Require().NoError(s.projects.Create(s.ctx, project))
	return project
}

func (s *RepositoryTestSuite) TestCreateStampsAudit() {
	project := s.createProject("Apollo")

	s.NotZero(project.ID)
	s.Equal("alice", project.CreatedBy)
	s.False(project.CreatedAt.IsZero())
	s.Nil(project.UpdatedBy)
	s.Nil(project.UpdatedAt)
	s.Equal(uint64(1), project.Version)

	stored, err := s.projects.FindByID(s.ctx, project.ID)
	s.Require().NoError(err)
	s.Equal("alice", stored.CreatedBy)
	s.Nil(stored.UpdatedAt)
}

func (s *RepositoryTestSuite) TestCreateWithoutIdentityUsesSystem() {
	project := &models.Project{Name: "Batch"}
	s.Require().NoError(s.projects.Create(context.Background(), project))
	s.Equal("system", project.CreatedBy)
}

func (s *RepositoryTestSuite) TestUpdateBumpsVersionAndStamps() {
	project := s.createProject("Apollo")

	bob := auth.WithIdentity(context.Background(), auth.Identity{Username: "bob"})
	err := s.projects.Update(bob, project.ID, 1, map[string]interface{}{"description": "moon"})
	s.Require().NoError(err)

	stored, err := s.projects.FindByID(s.ctx, project.ID)
	s.Require().NoError(err)
	s.Equal("Apollo", stored.Name)
	s.Equal("moon", stored.Description)
	s.Equal(uint64(2), stored.Version)
	s.Equal("alice", stored.CreatedBy)
	s.Require().NotNil(stored.UpdatedBy)
	s.Equal("bob", *stored.UpdatedBy)
	s.Require().NotNil(stored.UpdatedAt)
	s.False(stored.UpdatedAt.Before(stored.CreatedAt))
}

func (s *RepositoryTestSuite) TestUpdateCannotOverwriteCreationAudit() {
	project := s.createProject("Apollo")

	err := s.projects.Update(s.ctx, project.ID, 1, map[string]interface{}{
		"name":       "Gemini",
		"created_by": "mallory",
		"created_at": project.CreatedAt.AddDate(-1, 0, 0),
	})
	s.Require().NoError(err)

	stored, err := s.projects.FindByID(s.ctx, project.ID)
	s.Require().NoError(err)
	s.Equal("Gemini", stored.Name)
	s.Equal("alice", stored.CreatedBy)
	s.True(stored.CreatedAt.Equal(project.CreatedAt))
}

func (s *RepositoryTestSuite) TestUpdateStaleVersion() {
	project := s.createProject("Apollo")
	s.Require().NoError(s.projects.Update(s.ctx, project.ID, 1, map[string]interface{}{"name": "A"}))

	err := s.projects.Update(s.ctx, project.ID, 1, map[string]interface{}{"name": "B"})
	s.ErrorIs(err, ErrVersionConflict)

	stored, err := s.projects.FindByID(s.ctx, project.ID)
	s.Require().NoError(err)
	s.Equal("A", stored.Name)
}

func (s *RepositoryTestSuite) TestListOrdersByIDAndPages() {
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		s.createProject(name)
	}

	items, total, err := s.projects.List(s.ctx, pagination.Params{PageNumber: 2, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(int64(5), total)
	s.Require().Len(items, 2)
	s.Equal("c", items[0].Name)
	s.Equal("d", items[1].Name)

	items, total, err = s.projects.List(s.ctx, pagination.Params{PageNumber: 9, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(int64(5), total)
	s.Empty(items)
}

func (s *RepositoryTestSuite) TestListHugePageNumberIsEmpty() {
	for _, name := range []string{"a", "b", "c"} {
		s.createProject(name)
	}

	params, err := pagination.DefaultOptions().Parse("9223372036854775807", "100")
	s.Require().NoError(err)

	items, total, err := s.projects.List(s.ctx, params)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Empty(items)

	project := s.createProject("with tasks")
	s.Require().NoError(s.tasks.Create(s.ctx, &models.Task{Title: "t", ProjectID: project.ID}))

	tasks, total, err := s.tasks.List(s.ctx, project.ID, params)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Empty(tasks)
}

func (s *RepositoryTestSuite) TestDeleteCascadesTasks() {
	keep := s.createProject("keep")
	drop := s.createProject("drop")
	s.Require().NoError(s.tasks.Create(s.ctx, &models.Task{Title: "t1", ProjectID: drop.ID}))
	s.Require().NoError(s.tasks.Create(s.ctx, &models.Task{Title: "t2", ProjectID: drop.ID}))
	s.Require().NoError(s.tasks.Create(s.ctx, &models.Task{Title: "t3", ProjectID: keep.ID}))

	deleted, err := s.projects.Delete(s.ctx, drop.ID)
	s.Require().NoError(err)
	s.True(deleted)

	var remaining int64
	s.Require().NoError(s.db.Model(&models.Task{}).Count(&remaining).Error)
	s.Equal(int64(1), remaining)

	exists, err := s.projects.Exists(s.ctx, drop.ID)
	s.Require().NoError(err)
	s.False(exists)

	deleted, err = s.projects.Delete(s.ctx, drop.ID)
	s.Require().NoError(err)
	s.False(deleted)
}

func (s *RepositoryTestSuite) TestFindByIDPreloadsTasks() {
	project := s.createProject("Apollo")
	s.Require().NoError(s.tasks.Create(s.ctx, &models.Task{Title: "second", ProjectID: project.ID}))
	s.Require().NoError(s.tasks.Create(s.ctx, &models.Task{Title: "third", ProjectID: project.ID}))

	stored, err := s.projects.FindByID(s.ctx, project.ID, "Tasks")
	s.Require().NoError(err)
	s.Require().Len(stored.Tasks, 2)
	s.Equal("second", stored.Tasks[0].Title)

	_, err = s.projects.FindByID(s.ctx, 999)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestTaskDefaultsAndList() {
	project := s.createProject("Apollo")
	other := s.createProject("Other")

	task := &models.Task{Title: "write docs", ProjectID: project.ID}
	s.Require().NoError(s.tasks.Create(s.ctx, task))
	s.Equal(uint(models.StatusToDo), task.StatusID)
	s.Require().NoError(s.tasks.Create(s.ctx, &models.Task{Title: "elsewhere", ProjectID: other.ID}))

	items, total, err := s.tasks.List(s.ctx, project.ID, pagination.Params{PageNumber: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(items, 1)
	s.Equal("To Do", items[0].Status.Name)

	err = s.tasks.Update(s.ctx, task.ID, 1, map[string]interface{}{"status_id": uint(models.StatusDone)})
	s.Require().NoError(err)

	stored, err := s.tasks.FindByID(s.ctx, task.ID, "Status")
	s.Require().NoError(err)
	s.Equal("Done", stored.Status.Name)
	s.Equal(uint64(2), stored.Version)

	deleted, err := s.tasks.Delete(s.ctx, task.ID)
	s.Require().NoError(err)
	s.True(deleted)
}

func (s *RepositoryTestSuite) TestUserUniqueUsername() {
	s.Require().NoError(s.users.Create(s.ctx, &models.User{Username: "carol", PasswordHash: "x"}))

	err := s.users.Create(s.ctx, &models.User{Username: "carol", PasswordHash: "y"})
	s.ErrorIs(err, ErrUsernameTaken)

	user, err := s.users.FindByUsername(s.ctx, "carol")
	s.Require().NoError(err)
	s.Equal("x", user.PasswordHash)

	_, err = s.users.FindByUsername(s.ctx, "nobody")
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := database.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), logger.Silent)
	require.NoError(t, err)

	return db, mock
}

func TestProjectRepository_ListWrapsDriverError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `projects`")).WillReturnError(boom)

	_, _, err := NewProjectRepository(db).List(context.Background(), pagination.Params{PageNumber: 1, PageSize: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "count projects")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_UpdateLostRace(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `projects` SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := NewProjectRepository(db).Update(context.Background(), 7, 3, map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_DeleteDriverError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("lock wait timeout")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `tasks`")).WillReturnError(boom)
	mock.ExpectRollback()

	deleted, err := NewTaskRepository(db).Delete(context.Background(), 4)
	assert.False(t, deleted)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
