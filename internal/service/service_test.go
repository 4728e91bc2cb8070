package service_test

import (
	"context"
	"errors"
	"tasklist/internal/models/task"
	"tasklist/internal/repository"
	"tasklist/internal/repository/task/inmemory"
	"tasklist/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository is a repository mock
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) DeleteSoft(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteFull(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) GetAll(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Reorder(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockTaskRepository) Replace(ctx context.Context, tasks []*task.Task) error {
	args := m.Called(ctx, tasks)
	return args.Error(0)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

var fixedNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func today() task.Date {
	return task.DateOf(fixedNow)
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newService(t *testing.T) (*service.TaskService, *clock) {
	t.Helper()
	c := &clock{now: fixedNow}
	return service.NewTaskService(inmemory.NewTaskStorage(), service.WithClock(c.Now)), c
}

func collect(svc *service.TaskService) *[]service.Change {
	changes := &[]service.Change{}
	svc.Subscribe(func(c service.Change) {
		*changes = append(*changes, c)
	})
	return changes
}

func names(tasks []task.Task) []string {
	res := make([]string, len(tasks))
	for i, t := range tasks {
		res[i] = t.Name
	}
	return res
}

// TestTaskService_HealthCheck tests HealthCheck
func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("index broken"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "service health check")
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_AddTask tests task creation
func TestTaskService_AddTask(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		taskName         string
		category         task.Category
		deadline         task.Date
		expectedPriority task.Priority
		expectedField    string
	}{
		{name: "due today is urgent", taskName: "Pay rent", category: task.CategoryPersonal, deadline: today(), expectedPriority: task.PriorityUrgent},
		{name: "due in 2 days is high", taskName: "Essay", category: task.CategoryAssignment, deadline: today().AddDays(2), expectedPriority: task.PriorityHigh},
		{name: "due in 5 days is medium", taskName: "Report", category: task.CategoryWork, deadline: today().AddDays(5), expectedPriority: task.PriorityMedium},
		{name: "due in 10 days is low", taskName: "Plan trip", category: task.CategoryOther, deadline: today().AddDays(10), expectedPriority: task.PriorityLow},
		{name: "no deadline is low", taskName: "Someday", category: task.CategoryOther, expectedPriority: task.PriorityLow},
		{name: "error - empty name", taskName: "", category: task.CategoryWork, expectedField: "taskName"},
		{name: "error - whitespace name", taskName: "   \t", category: task.CategoryWork, expectedField: "taskName"},
		{name: "error - past deadline", taskName: "Late", category: task.CategoryWork, deadline: today().AddDays(-1), expectedField: "deadline"},
		{name: "error - unknown category", taskName: "Odd", category: task.Category("Chores"), expectedField: "taskType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t)
			changes := collect(svc)

			created, err := svc.AddTask(ctx, tt.taskName, tt.category, tt.deadline)

			if tt.expectedField != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, service.ErrValidation)
				busErr, ok := service.AsBusinessError(err)
				require.True(t, ok, "Expected BusinessError")
				assert.Equal(t, tt.expectedField, busErr.Details["field"])

				all, err := svc.Tasks(ctx)
				require.NoError(t, err)
				assert.Empty(t, all)
				assert.Empty(t, *changes)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.Equal(t, tt.expectedPriority, created.Priority)
			assert.False(t, created.Completed)
			assert.False(t, created.IsDeleted)
			require.Len(t, *changes, 1)
			assert.Equal(t, service.OpAdd, (*changes)[0].Op)
			assert.Equal(t, created.ID, (*changes)[0].TaskID)
		})
	}
}

// TestTaskService_AddTask_AppendsAndTrims tests ordering and trimming on creation
func TestTaskService_AddTask_AppendsAndTrims(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	first, err := svc.AddTask(ctx, "  first  ", task.CategoryWork, task.Date{})
	require.NoError(t, err)
	second, err := svc.AddTask(ctx, "second", task.CategoryWork, task.Date{})
	require.NoError(t, err)

	assert.Equal(t, "first", first.Name)
	assert.NotEqual(t, first.ID, second.ID)

	all, err := svc.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, names(all))
}

// TestTaskService_EditTask tests editing
func TestTaskService_EditTask(t *testing.T) {
	ctx := context.Background()

	t.Run("success - rename, recategorize and move deadline", func(t *testing.T) {
		svc, _ := newService(t)
		a, err := svc.AddTask(ctx, "A", task.CategoryWork, today().AddDays(10))
		require.NoError(t, err)
		b, err := svc.AddTask(ctx, "B", task.CategoryWork, task.Date{})
		require.NoError(t, err)

		edited, err := svc.EditTask(ctx, a.ID,
			task.WithName(" A2 "),
			task.WithCategory(task.CategoryAssignment),
			task.WithDeadline(today().AddDays(1)),
		)
		require.NoError(t, err)
		assert.Equal(t, "A2", edited.Name)
		assert.Equal(t, task.CategoryAssignment, edited.Category)
		assert.Equal(t, task.PriorityHigh, edited.Priority)

		all, err := svc.Tasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, b.ID}, []string{all[0].ID, all[1].ID})
	})

	t.Run("success - clearing the deadline makes it low", func(t *testing.T) {
		svc, _ := newService(t)
		a, err := svc.AddTask(ctx, "A", task.CategoryWork, today())
		require.NoError(t, err)

		edited, err := svc.EditTask(ctx, a.ID, task.WithDeadline(task.Date{}))
		require.NoError(t, err)
		assert.True(t, edited.Deadline.IsZero())
		assert.Equal(t, task.PriorityLow, edited.Priority)
	})

	t.Run("error - overdue deadline blocks rename", func(t *testing.T) {
		svc, c := newService(t)
		a, err := svc.AddTask(ctx, "Pay rent", task.CategoryWork, today())
		require.NoError(t, err)
		changes := collect(svc)

		c.now = fixedNow.Add(72 * time.Hour)
		_, err = svc.EditTask(ctx, a.ID, task.WithName("Pay rent now"))
		require.ErrorIs(t, err, service.ErrValidation)

		busErr, ok := service.AsBusinessError(err)
		require.True(t, ok, "Expected BusinessError")
		assert.Equal(t, "deadline", busErr.Details["field"])

		got, err := svc.GetTask(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pay rent", got.Name)
		assert.Empty(t, *changes)
	})

	t.Run("success - overdue task renamed once the deadline is cleared", func(t *testing.T) {
		svc, c := newService(t)
		a, err := svc.AddTask(ctx, "Pay rent", task.CategoryWork, today())
		require.NoError(t, err)

		c.now = fixedNow.Add(72 * time.Hour)
		edited, err := svc.EditTask(ctx, a.ID, task.WithName("Pay rent now"), task.WithDeadline(task.Date{}))
		require.NoError(t, err)
		assert.Equal(t, "Pay rent now", edited.Name)
		assert.Equal(t, task.PriorityLow, edited.Priority)
	})

	t.Run("error - empty name leaves task untouched", func(t *testing.T) {
		svc, _ := newService(t)
		a, err := svc.AddTask(ctx, "A", task.CategoryWork, task.Date{})
		require.NoError(t, err)
		changes := collect(svc)

		_, err = svc.EditTask(ctx, a.ID, task.WithName("  "))
		assert.ErrorIs(t, err, service.ErrValidation)

		got, err := svc.GetTask(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", got.Name)
		assert.Empty(t, *changes)
	})

	t.Run("error - new past deadline", func(t *testing.T) {
		svc, _ := newService(t)
		a, err := svc.AddTask(ctx, "A", task.CategoryWork, task.Date{})
		require.NoError(t, err)

		_, err = svc.EditTask(ctx, a.ID, task.WithDeadline(today().AddDays(-3)))
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("error - not found", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.EditTask(ctx, "missing", task.WithName("x"))
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

// TestTaskService_SetCompleted tests completion and idempotence
func TestTaskService_SetCompleted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, err := svc.AddTask(ctx, "A", task.CategoryWork, task.Date{})
	require.NoError(t, err)
	changes := collect(svc)

	done, err := svc.SetCompleted(ctx, a.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.Len(t, *changes, 1)
	assert.Equal(t, service.OpComplete, (*changes)[0].Op)

	// same value again succeeds without a new change
	again, err := svc.SetCompleted(ctx, a.ID, true)
	require.NoError(t, err)
	assert.True(t, again.Completed)
	assert.Len(t, *changes, 1)

	toggled, err := svc.ToggleCompletion(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
	assert.Len(t, *changes, 2)

	_, err = svc.SetCompleted(ctx, "missing", true)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = svc.ToggleCompletion(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

// TestTaskService_SetCompleted_RederivesOnReopen tests that a reopened task catches up with the clock
func TestTaskService_SetCompleted_RederivesOnReopen(t *testing.T) {
	ctx := context.Background()
	svc, c := newService(t)

	a, err := svc.AddTask(ctx, "A", task.CategoryWork, today().AddDays(5))
	require.NoError(t, err)
	require.Equal(t, task.PriorityMedium, a.Priority)

	_, err = svc.SetCompleted(ctx, a.ID, true)
	require.NoError(t, err)

	c.now = fixedNow.Add(4 * 24 * time.Hour)
	frozen, err := svc.GetTask(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, task.PriorityMedium, frozen.Priority)

	reopened, err := svc.SetCompleted(ctx, a.ID, false)
	require.NoError(t, err)
	assert.Equal(t, task.PriorityHigh, reopened.Priority)
}

// TestTaskService_SoftDeleteRestore tests the recycle bin round trip
func TestTaskService_SoftDeleteRestore(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, err := svc.AddTask(ctx, "A", task.CategoryWork, today().AddDays(2))
	require.NoError(t, err)
	_, err = svc.SetCompleted(ctx, a.ID, true)
	require.NoError(t, err)
	changes := collect(svc)

	require.NoError(t, svc.SoftDelete(ctx, a.ID))
	deleted, err := svc.GetTask(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.True(t, deleted.Completed, "soft delete keeps other fields")
	assert.Equal(t, a.Priority, deleted.Priority)

	// second delete is a no-op
	require.NoError(t, svc.SoftDelete(ctx, a.ID))
	assert.Len(t, *changes, 1)

	restored, err := svc.RestoreTask(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.True(t, restored.Completed)
	assert.Len(t, *changes, 2)

	// restoring an active task is a no-op
	_, err = svc.RestoreTask(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, *changes, 2)

	assert.ErrorIs(t, svc.SoftDelete(ctx, "missing"), service.ErrNotFound)
	_, err = svc.RestoreTask(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

// TestTaskService_PurgeTask tests permanent removal
func TestTaskService_PurgeTask(t *testing.T) {
	ctx := context.Background()

	t.Run("success - purge deleted task", func(t *testing.T) {
		svc, _ := newService(t)
		a, err := svc.AddTask(ctx, "A", task.CategoryWork, task.Date{})
		require.NoError(t, err)
		require.NoError(t, svc.SoftDelete(ctx, a.ID))

		require.NoError(t, svc.PurgeTask(ctx, a.ID))
		_, err = svc.GetTask(ctx, a.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("error - purge active task", func(t *testing.T) {
		svc, _ := newService(t)
		a, err := svc.AddTask(ctx, "A", task.CategoryWork, task.Date{})
		require.NoError(t, err)

		err = svc.PurgeTask(ctx, a.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrPrecondition)
		_, ok := service.AsBusinessError(err)
		assert.True(t, ok)

		all, err := svc.Tasks(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("error - purge unknown task", func(t *testing.T) {
		svc, _ := newService(t)
		assert.ErrorIs(t, svc.PurgeTask(ctx, "missing"), service.ErrNotFound)
	})
}

// TestTaskService_Reorder tests replacing the authoritative order
func TestTaskService_Reorder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, _ := svc.AddTask(ctx, "A", task.CategoryWork, task.Date{})
	b, _ := svc.AddTask(ctx, "B", task.CategoryWork, task.Date{})
	c, _ := svc.AddTask(ctx, "C", task.CategoryWork, task.Date{})
	require.NoError(t, svc.SoftDelete(ctx, b.ID))

	require.NoError(t, svc.Reorder(ctx, []string{c.ID, b.ID, a.ID}))
	all, err := svc.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, names(all))

	// deleted tasks are part of the permutation
	err = svc.Reorder(ctx, []string{a.ID, c.ID})
	assert.ErrorIs(t, err, service.ErrValidation)

	err = svc.Reorder(ctx, []string{a.ID, a.ID, c.ID})
	assert.ErrorIs(t, err, service.ErrValidation)

	all, err = svc.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, names(all))
}

// TestTaskService_RefreshPriority tests the refresher's mutation path
func TestTaskService_RefreshPriority(t *testing.T) {
	ctx := context.Background()
	svc, c := newService(t)

	live, _ := svc.AddTask(ctx, "live", task.CategoryWork, today().AddDays(8))
	done, _ := svc.AddTask(ctx, "done", task.CategoryWork, today().AddDays(8))
	gone, _ := svc.AddTask(ctx, "gone", task.CategoryWork, today().AddDays(8))
	none, _ := svc.AddTask(ctx, "none", task.CategoryWork, task.Date{})
	_, err := svc.SetCompleted(ctx, done.ID, true)
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, gone.ID))

	c.now = fixedNow.Add(24 * time.Hour)
	changes := collect(svc)

	changed, err := svc.RefreshPriority(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	// no time has passed: nothing more to do
	changed, err = svc.RefreshPriority(ctx, live.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	for _, id := range []string{done.ID, gone.ID, none.ID} {
		changed, err := svc.RefreshPriority(ctx, id)
		require.NoError(t, err)
		assert.False(t, changed)
	}

	got, err := svc.GetTask(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, task.PriorityMedium, got.Priority)

	frozen, err := svc.GetTask(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, task.PriorityLow, frozen.Priority)

	require.Len(t, *changes, 1)
	assert.Equal(t, service.OpRefresh, (*changes)[0].Op)

	_, err = svc.RefreshPriority(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

// TestTaskService_Load tests hydration from stored records
func TestTaskService_Load(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	changes := collect(svc)

	records := []task.Record{
		{ID: "1", TaskName: "stale priority", TaskType: task.CategoryWork, Deadline: today().String(), Priority: task.PriorityLow},
		{ID: "2", TaskName: "completed", TaskType: task.CategoryWork, Deadline: today().String(), Priority: task.PriorityLow, Completed: true},
		{ID: "3", TaskName: "bad date", TaskType: task.CategoryWork, Deadline: "soon", Priority: task.PriorityLow},
		{ID: "1", TaskName: "duplicate", TaskType: task.CategoryWork, Priority: task.PriorityLow},
		{ID: "4", TaskName: "bad type", TaskType: "Errands", Priority: task.PriorityLow},
		{ID: "5", TaskName: "binned", TaskType: task.CategoryOther, Priority: task.PriorityHigh, IsDeleted: true},
		{ID: "6", TaskName: "   ", TaskType: task.CategoryWork, Priority: task.PriorityLow},
	}

	result, err := svc.Load(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, service.LoadResult{Loaded: 3, Skipped: 4}, result)

	all, err := svc.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"stale priority", "completed", "binned"}, names(all))
	assert.Equal(t, task.PriorityUrgent, all[0].Priority, "live task is re-derived")
	assert.Equal(t, task.PriorityLow, all[1].Priority, "completed task stays frozen")
	assert.Equal(t, task.PriorityHigh, all[2].Priority, "deleted task stays frozen")

	require.Len(t, *changes, 1)
	assert.Equal(t, service.OpLoad, (*changes)[0].Op)
	assert.Len(t, (*changes)[0].Tasks, 3)
}

// TestTaskService_Notifications tests ordering and unsubscribe
func TestTaskService_Notifications(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	var seqs []uint64
	var ops []service.Op
	unsubscribe := svc.Subscribe(func(c service.Change) {
		seqs = append(seqs, c.Seq)
		ops = append(ops, c.Op)
	})

	a, err := svc.AddTask(ctx, "A", task.CategoryWork, task.Date{})
	require.NoError(t, err)
	_, err = svc.ToggleCompletion(ctx, a.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, a.ID))
	require.NoError(t, svc.PurgeTask(ctx, a.ID))

	assert.Equal(t, []uint64{1, 2, 3, 4}, seqs)
	assert.Equal(t, []service.Op{service.OpAdd, service.OpComplete, service.OpSoftDelete, service.OpPurge}, ops)

	unsubscribe()
	_, err = svc.AddTask(ctx, "B", task.CategoryWork, task.Date{})
	require.NoError(t, err)
	assert.Len(t, seqs, 4)
}

// TestTaskService_ChangeSnapshotIsCopy tests that listeners cannot reach stored state
func TestTaskService_ChangeSnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	svc.Subscribe(func(c service.Change) {
		for i := range c.Tasks {
			c.Tasks[i].Name = "tampered"
		}
	})

	a, err := svc.AddTask(ctx, "A", task.CategoryWork, task.Date{})
	require.NoError(t, err)

	got, err := svc.GetTask(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

// TestTaskService_RepositoryFailures tests translation of repository errors
func TestTaskService_RepositoryFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("not found from repository", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, "x").Return(nil, repository.ErrNotFound)

		svc := service.NewTaskService(mockRepo)
		err := svc.SoftDelete(ctx, "x")

		assert.ErrorIs(t, err, service.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("update failure is not a business error", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		existing := &task.Task{ID: "x", Name: "A", Category: task.CategoryWork, Priority: task.PriorityLow}
		mockRepo.On("GetByID", mock.Anything, "x").Return(existing, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
			return t.Completed
		})).Return(errors.New("disk on fire"))

		svc := service.NewTaskService(mockRepo)
		_, err := svc.SetCompleted(ctx, "x", true)

		require.Error(t, err)
		_, ok := service.AsBusinessError(err)
		assert.False(t, ok)
		assert.Contains(t, err.Error(), "disk on fire")
		mockRepo.AssertExpectations(t)
	})

	t.Run("snapshot failure does not fail the mutation", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		mockRepo.On("GetAll", mock.Anything).Return(nil, errors.New("snapshot failed"))

		svc := service.NewTaskService(mockRepo)
		notified := false
		svc.Subscribe(func(service.Change) { notified = true })

		_, err := svc.AddTask(ctx, "A", task.CategoryWork, task.Date{})
		assert.NoError(t, err)
		assert.False(t, notified)
		mockRepo.AssertExpectations(t)
	})
}

// TestTaskService_Scenario walks through the documented lifecycle scenario
func TestTaskService_Scenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	rent, err := svc.AddTask(ctx, "Pay rent", task.CategoryPersonal, today())
	require.NoError(t, err)
	assert.Equal(t, task.PriorityUrgent, rent.Priority)

	trip, err := svc.AddTask(ctx, "Plan trip", task.CategoryPersonal, today().AddDays(10))
	require.NoError(t, err)
	assert.Equal(t, task.PriorityLow, trip.Priority)

	require.NoError(t, svc.SoftDelete(ctx, rent.ID))
	restored, err := svc.RestoreTask(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, task.PriorityUrgent, restored.Priority)

	err = svc.PurgeTask(ctx, trip.ID)
	assert.ErrorIs(t, err, service.ErrPrecondition)

	all, err := svc.Tasks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// TestBusinessError tests the error type itself
func TestBusinessError(t *testing.T) {
	err := service.NewValidationError("taskName", "name cannot be empty")
	assert.Equal(t, "[VALIDATION_ERROR] name cannot be empty", err.Error())
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.NotErrorIs(t, err, service.ErrNotFound)

	cause := errors.New("read only file system")
	perr := service.NewPersistenceError("save", cause)
	assert.ErrorIs(t, perr, service.ErrPersistence)
	assert.ErrorIs(t, perr, cause)
	assert.Contains(t, perr.Error(), "read only file system")

	custom := service.NewBusinessError("CUSTOM", "msg", service.ToDetail("k", 1))
	assert.Equal(t, 1, custom.Details["k"])
}
