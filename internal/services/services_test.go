package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/pagination"
	"github.com/yukikurage/project-management-api/internal/patch"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/testutil"
)

type ServiceTestSuite struct {
	suite.Suite
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	projects    *ProjectService
	tasks       *TaskService
	user        context.Context
	admin       context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	db := testutil.NewDB(s.T())
	s.projectRepo = repository.NewProjectRepository(db)
	s.taskRepo = repository.NewTaskRepository(db)
	s.projects = NewProjectService(s.projectRepo)
	s.tasks = NewTaskService(s.taskRepo, s.projectRepo)

	s.user = auth.WithIdentity(context.Background(), auth.Identity{
		Username: "alice",
		Roles:    auth.NewRoleSet(auth.RoleUser),
	})
	s.admin = auth.WithIdentity(context.Background(), auth.Identity{
		Username: "root",
		Roles:    auth.NewRoleSet(auth.RoleAdmin),
	})
}

func (s *ServiceTestSuite) createProject(name string) *models.Project {
	project, err := s.projects.CreateProject(s.user, CreateProjectInput{Name: name, Description: "d"})
	s.Require().NoError(err)
	return project
}

func (s *ServiceTestSuite) createTask(projectID uint64, title string) *models.Task {
	task, err := s.tasks.CreateTask(s.user, projectID, CreateTaskInput{Title: title})
	s.Require().NoError(err)
	return task
}

func (s *ServiceTestSuite) TestCreateThenGet() {
	created := s.createProject("Alpha")

	got, err := s.projects.GetProject(s.user, created.ID)
	s.Require().NoError(err)
	s.Equal("Alpha", got.Name)
	s.Equal("d", got.Description)
	s.Equal("alice", got.CreatedBy)
	s.False(got.CreatedAt.IsZero())
	s.Nil(got.UpdatedAt)
	s.Nil(got.UpdatedBy)
	s.Empty(got.Tasks)
}

func (s *ServiceTestSuite) TestCreateProjectValidation() {
	_, err := s.projects.CreateProject(s.user, CreateProjectInput{
		Name:        "  ",
		Description: strings.Repeat("x", 501),
	})

	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("is required", verr.Fields["name"])
	s.Contains(verr.Fields["description"], "500")

	_, err = s.projects.CreateProject(s.user, CreateProjectInput{Name: strings.Repeat("n", 101)})
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields["name"], "100")
}

func (s *ServiceTestSuite) TestUpdateDescriptionOnlyKeepsName() {
	created := s.createProject("Alpha")

	updated, err := s.projects.UpdateProject(s.user, created.ID, UpdateProjectInput{
		Description: patch.Of("new"),
	})
	s.Require().NoError(err)
	s.Equal("Alpha", updated.Name)
	s.Equal("new", updated.Description)
	s.Equal(uint64(2), updated.Version)
	s.Require().NotNil(updated.UpdatedBy)
	s.Equal("alice", *updated.UpdatedBy)
	s.NotNil(updated.UpdatedAt)
}

func (s *ServiceTestSuite) TestUpdateNullClearsDescription() {
	created := s.createProject("Alpha")

	updated, err := s.projects.UpdateProject(s.user, created.ID, UpdateProjectInput{
		Description: patch.Null[string](),
	})
	s.Require().NoError(err)
	s.Equal("", updated.Description)

	_, err = s.projects.UpdateProject(s.user, created.ID, UpdateProjectInput{Name: patch.Null[string]()})
	var verr *ValidationError
	s.ErrorAs(err, &verr)
}

func (s *ServiceTestSuite) TestUpdateBlankNameAndTitleAreIgnored() {
	created := s.createProject("Alpha")

	updated, err := s.projects.UpdateProject(s.user, created.ID, UpdateProjectInput{Name: patch.Of("")})
	s.Require().NoError(err)
	s.Equal("Alpha", updated.Name)
	s.Equal(uint64(1), updated.Version)

	updated, err = s.projects.UpdateProject(s.user, created.ID, UpdateProjectInput{
		Name:        patch.Of("   "),
		Description: patch.Of("kept name"),
	})
	s.Require().NoError(err)
	s.Equal("Alpha", updated.Name)
	s.Equal("kept name", updated.Description)
	s.Equal(uint64(2), updated.Version)

	task := s.createTask(created.ID, "T1")
	updatedTask, err := s.tasks.UpdateTask(s.user, created.ID, task.ID, UpdateTaskInput{
		Title:    patch.Of(""),
		StatusID: patch.Of(uint(models.StatusDone)),
	})
	s.Require().NoError(err)
	s.Equal("T1", updatedTask.Title)
	s.Equal(uint(models.StatusDone), updatedTask.StatusID)
}

func (s *ServiceTestSuite) TestEmptyPatchIsNoOp() {
	created := s.createProject("Alpha")

	updated, err := s.projects.UpdateProject(s.user, created.ID, UpdateProjectInput{})
	s.Require().NoError(err)
	s.Equal(uint64(1), updated.Version)
	s.Nil(updated.UpdatedAt)
}

func (s *ServiceTestSuite) TestUpdateExpectedVersion() {
	created := s.createProject("Alpha")
	stale := uint64(1)

	_, err := s.projects.UpdateProject(s.user, created.ID, UpdateProjectInput{
		Name:            patch.Of("Beta"),
		ExpectedVersion: &stale,
	})
	s.Require().NoError(err)

	_, err = s.projects.UpdateProject(s.user, created.ID, UpdateProjectInput{
		Name:            patch.Of("Gamma"),
		ExpectedVersion: &stale,
	})
	s.ErrorIs(err, ErrVersionConflict)

	got, err := s.projects.GetProject(s.user, created.ID)
	s.Require().NoError(err)
	s.Equal("Beta", got.Name)
}

func (s *ServiceTestSuite) TestUpdateMissingProject() {
	_, err := s.projects.UpdateProject(s.user, 404, UpdateProjectInput{Name: patch.Of("x")})
	s.ErrorIs(err, ErrProjectNotFound)
}

func (s *ServiceTestSuite) TestDeleteProjectRequiresAdmin() {
	created := s.createProject("Alpha")

	s.ErrorIs(s.projects.DeleteProject(s.user, created.ID), ErrForbidden)
	s.ErrorIs(s.projects.DeleteProject(context.Background(), created.ID), ErrForbidden)
	s.ErrorIs(s.projects.DeleteProject(s.user, 999), ErrForbidden)

	_, err := s.projects.GetProject(s.user, created.ID)
	s.NoError(err)
}

func (s *ServiceTestSuite) TestDeleteProjectCascades() {
	created := s.createProject("Alpha")
	s.createTask(created.ID, "T1")
	s.createTask(created.ID, "T2")

	s.Require().NoError(s.projects.DeleteProject(s.admin, created.ID))

	items, total, err := s.taskRepo.List(s.user, created.ID, pagination.Params{PageNumber: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(items)

	s.ErrorIs(s.projects.DeleteProject(s.admin, created.ID), ErrProjectNotFound)
}

func (s *ServiceTestSuite) TestListProjectsPageShape() {
	for i := 0; i < 7; i++ {
		s.createProject("p")
	}

	tests := []struct {
		pageNumber, pageSize int
		wantItems            int
	}{
		{1, 3, 3},
		{3, 3, 1},
		{4, 3, 0},
		{1, 100, 7},
	}
	for _, tt := range tests {
		page, err := s.projects.ListProjects(s.user, pagination.Params{PageNumber: tt.pageNumber, PageSize: tt.pageSize})
		s.Require().NoError(err)
		s.Len(page.Items, tt.wantItems)
		s.Equal(int64(7), page.TotalCount)
	}
}

func (s *ServiceTestSuite) TestCreateTaskDefaultsStatus() {
	project := s.createProject("Alpha")

	task := s.createTask(project.ID, "T1")
	s.Equal(uint(models.StatusToDo), task.StatusID)
	s.Equal("To Do", task.Status.Name)

	_, err := s.tasks.CreateTask(s.user, 999, CreateTaskInput{Title: "orphan"})
	s.ErrorIs(err, ErrProjectNotFound)

	bad := uint(9)
	_, err = s.tasks.CreateTask(s.user, project.ID, CreateTaskInput{Title: "x", StatusID: &bad})
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "statusId")
}

func (s *ServiceTestSuite) TestTaskOwnershipMismatch() {
	a := s.createProject("A")
	b := s.createProject("B")
	task := s.createTask(a.ID, "T1")

	_, err := s.tasks.GetTask(s.user, b.ID, task.ID)
	s.ErrorIs(err, ErrTaskProjectMismatch)
	s.False(errors.Is(err, ErrTaskNotFound))

	_, err = s.tasks.UpdateTask(s.user, b.ID, task.ID, UpdateTaskInput{Title: patch.Of("x")})
	s.ErrorIs(err, ErrTaskProjectMismatch)

	s.ErrorIs(s.tasks.DeleteTask(s.user, b.ID, task.ID), ErrTaskProjectMismatch)

	_, err = s.tasks.GetTask(s.user, a.ID, 999)
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestUpdateTaskTitleKeepsStatus() {
	project := s.createProject("Alpha")
	task := s.createTask(project.ID, "T1")

	updated, err := s.tasks.UpdateTask(s.user, project.ID, task.ID, UpdateTaskInput{Title: patch.Of("T1-renamed")})
	s.Require().NoError(err)
	s.Equal("T1-renamed", updated.Title)
	s.Equal(uint(models.StatusToDo), updated.StatusID)
}

func (s *ServiceTestSuite) TestUpdateTaskStatus() {
	project := s.createProject("Alpha")
	task := s.createTask(project.ID, "T1")

	updated, err := s.tasks.UpdateTask(s.user, project.ID, task.ID, UpdateTaskInput{Status: patch.Of("in progress")})
	s.Require().NoError(err)
	s.Equal(uint(models.StatusInProgress), updated.StatusID)

	updated, err = s.tasks.UpdateTask(s.user, project.ID, task.ID, UpdateTaskInput{
		StatusID: patch.Of(uint(models.StatusDone)),
		Status:   patch.Of("Done"),
	})
	s.Require().NoError(err)
	s.Equal("Done", updated.Status.Name)

	updated, err = s.tasks.UpdateTask(s.user, project.ID, task.ID, UpdateTaskInput{StatusID: patch.Of(uint(models.StatusToDo))})
	s.Require().NoError(err)
	s.Equal(uint(models.StatusToDo), updated.StatusID)

	_, err = s.tasks.UpdateTask(s.user, project.ID, task.ID, UpdateTaskInput{
		StatusID: patch.Of(uint(models.StatusDone)),
		Status:   patch.Of("To Do"),
	})
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("does not match statusId", verr.Fields["status"])
}

func (s *ServiceTestSuite) TestDeleteTask() {
	project := s.createProject("Alpha")
	task := s.createTask(project.ID, "T1")

	s.Require().NoError(s.tasks.DeleteTask(s.user, project.ID, task.ID))
	s.ErrorIs(s.tasks.DeleteTask(s.user, project.ID, task.ID), ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestDeleteTaskAdminGate() {
	gated := NewTaskService(s.taskRepo, s.projectRepo, WithAdminOnlyTaskDelete(true))
	project := s.createProject("Alpha")
	task := s.createTask(project.ID, "T1")

	s.ErrorIs(gated.DeleteTask(s.user, project.ID, task.ID), ErrForbidden)
	s.NoError(gated.DeleteTask(s.admin, project.ID, task.ID))
}

func (s *ServiceTestSuite) TestListTasksRequiresProject() {
	_, err := s.tasks.ListTasks(s.user, 404, pagination.Params{PageNumber: 1, PageSize: 10})
	s.ErrorIs(err, ErrProjectNotFound)

	project := s.createProject("Alpha")
	s.createTask(project.ID, "T1")
	page, err := s.tasks.ListTasks(s.user, project.ID, pagination.Params{PageNumber: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Equal(int64(1), page.TotalCount)
	s.Equal(1, page.TotalPages)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
