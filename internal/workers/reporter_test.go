package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gideonapp/engage/internal/database"
	"github.com/gideonapp/engage/internal/models"
	"github.com/gideonapp/engage/internal/queue"
	"github.com/gideonapp/engage/internal/services/ai"
	"github.com/google/uuid"
)

type mockSettingsRepo struct {
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error)
	stampLastSentFunc func(ctx context.Context, id uuid.UUID, cat models.Category, prev *time.Time, sent time.Time) error
}

func (m *mockSettingsRepo) ListByFamily(ctx context.Context, family models.Family) ([]*models.NotificationSettings, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSettingsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockSettingsRepo) GetOrCreate(ctx context.Context, userID uuid.UUID, family models.Family) (*models.NotificationSettings, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSettingsRepo) UpdatePreferences(ctx context.Context, s *models.NotificationSettings) error {
	return errors.New("not implemented")
}

func (m *mockSettingsRepo) StampLastSent(ctx context.Context, id uuid.UUID, cat models.Category, prev *time.Time, sent time.Time) error {
	return m.stampLastSentFunc(ctx, id, cat, prev, sent)
}

type mockTrackerRepo struct {
	getByUserIDFunc  func(ctx context.Context, userID uuid.UUID) (*models.Tracker, error)
	lastActiveAtFunc func(ctx context.Context, userID uuid.UUID) (*time.Time, error)
}

func (m *mockTrackerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Tracker, error) {
	return m.getByUserIDFunc(ctx, userID)
}

func (m *mockTrackerRepo) Create(ctx context.Context, t *models.Tracker) error { return nil }
func (m *mockTrackerRepo) Update(ctx context.Context, t *models.Tracker) error { return nil }

func (m *mockTrackerRepo) LastActiveAt(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	return m.lastActiveAtFunc(ctx, userID)
}

type mockNotifyRepo struct {
	createFunc func(ctx context.Context, n *models.Notification) error
}

func (m *mockNotifyRepo) Create(ctx context.Context, n *models.Notification) error {
	return m.createFunc(ctx, n)
}

type mockTuningRepo struct{}

func (m *mockTuningRepo) Get(ctx context.Context) (*models.EngagementConfig, error) {
	return models.DefaultEngagementConfig(), nil
}

type mockGenerator struct {
	generateFunc func(ctx context.Context, req ai.Request) (*ai.Content, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req ai.Request) (*ai.Content, error) {
	return m.generateFunc(ctx, req)
}

type mockJobQueue struct {
	enqueueFunc func(ctx context.Context, job *queue.Job) error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, job)
	}
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error { return nil }

func (m *mockJobQueue) HealthCheck(ctx context.Context) error { return nil }

// sundayEvening is a fixed Sunday matching the default weekly summary day.
var sundayEvening = time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

// weeklyJobFixture builds a settings row eligible for a weekly summary on
// sundayEvening, plus the matching job as the dispatcher would enqueue it.
func weeklyJobFixture() (*models.NotificationSettings, *queue.Job) {
	userID := uuid.New()
	s := models.DefaultSettings(userID, models.FamilyHannah)
	job := queue.NewJob(queue.JobTypeWeeklySummary, userID, s.ID, s.Family, models.CategoryWeeklySummary)
	return s, job
}

func newTestReporter(
	settings *mockSettingsRepo,
	trackers *mockTrackerRepo,
	notifications *mockNotifyRepo,
	generator *mockGenerator,
	jobs *mockJobQueue,
) *Reporter {
	r := NewReporter(generator, settings, trackers, notifications, &mockTuningRepo{}, jobs)
	r.now = func() time.Time { return sundayEvening }
	return r
}

func TestProcessReportJobSkipsWhenPeriodAlreadyHandled(t *testing.T) {
	t.Parallel()

	s, job := weeklyJobFixture()
	// Enqueued with a nil stamp, but someone stamped the row since.
	stamped := sundayEvening.Add(-time.Minute)
	s.LastWeeklySent = &stamped
	job.PrevSent = nil

	generated := false
	settings := &mockSettingsRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error) {
			return s, nil
		},
	}
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, req ai.Request) (*ai.Content, error) {
			generated = true
			return &ai.Content{Title: "t", Message: "m"}, nil
		},
	}
	trackers := &mockTrackerRepo{
		lastActiveAtFunc: func(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
			return nil, nil
		},
	}

	r := newTestReporter(settings, trackers, &mockNotifyRepo{}, generator, &mockJobQueue{})
	if err := r.ProcessReportJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessReportJob() error = %v, want stale job dropped cleanly", err)
	}
	if generated {
		t.Error("generator must not run when the period was already handled")
	}
}

func TestProcessReportJobRejectsForeignSettings(t *testing.T) {
	t.Parallel()

	s, job := weeklyJobFixture()
	job.UserID = uuid.New() // different user than the settings row

	settings := &mockSettingsRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error) {
			return s, nil
		},
	}
	trackers := &mockTrackerRepo{
		lastActiveAtFunc: func(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
			return nil, nil
		},
	}

	r := newTestReporter(settings, trackers, &mockNotifyRepo{}, &mockGenerator{}, &mockJobQueue{})
	if err := r.ProcessReportJob(context.Background(), job); err == nil {
		t.Fatal("expected error when settings belong to another user")
	}
}

func TestProcessReportJobSkipsWhenNoLongerEligible(t *testing.T) {
	t.Parallel()

	s, job := weeklyJobFixture()
	// User disabled weekly summaries after the job was enqueued.
	s.WeeklySummaryEnabled = false

	generated := false
	settings := &mockSettingsRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error) {
			return s, nil
		},
	}
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, req ai.Request) (*ai.Content, error) {
			generated = true
			return &ai.Content{Title: "t", Message: "m"}, nil
		},
	}
	trackers := &mockTrackerRepo{
		lastActiveAtFunc: func(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
			return nil, nil
		},
	}

	r := newTestReporter(settings, trackers, &mockNotifyRepo{}, generator, &mockJobQueue{})
	if err := r.ProcessReportJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessReportJob() error = %v, want ineligible job dropped cleanly", err)
	}
	if generated {
		t.Error("generator must not run for a disabled category")
	}
}

func TestProcessReportJobDropsInvalidSettingsRow(t *testing.T) {
	t.Parallel()

	s, job := weeklyJobFixture()
	// The stored day value went bad after enqueue; retrying the job cannot
	// repair the row, so it is dropped without error.
	s.WeeklySummaryDay = models.WeeklySummaryDay("friday_noon")

	generated := false
	settings := &mockSettingsRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error) {
			return s, nil
		},
	}
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, req ai.Request) (*ai.Content, error) {
			generated = true
			return &ai.Content{Title: "t", Message: "m"}, nil
		},
	}
	trackers := &mockTrackerRepo{
		lastActiveAtFunc: func(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
			return nil, nil
		},
	}

	r := newTestReporter(settings, trackers, &mockNotifyRepo{}, generator, &mockJobQueue{})
	if err := r.ProcessReportJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessReportJob() error = %v, want malformed row dropped cleanly", err)
	}
	if generated {
		t.Error("generator must not run for a malformed settings row")
	}
}

func TestProcessReportJobGeneratesAndStamps(t *testing.T) {
	t.Parallel()

	s, job := weeklyJobFixture()

	var created *models.Notification
	var stampedPrev *time.Time
	stampedAt := time.Time{}
	settings := &mockSettingsRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error) {
			return s, nil
		},
		stampLastSentFunc: func(ctx context.Context, id uuid.UUID, cat models.Category, prev *time.Time, sent time.Time) error {
			stampedPrev = prev
			stampedAt = sent
			return nil
		},
	}
	trackers := &mockTrackerRepo{
		getByUserIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Tracker, error) {
			return &models.Tracker{UserID: id, CurrentStreak: 6}, nil
		},
		lastActiveAtFunc: func(ctx context.Context, id uuid.UUID) (*time.Time, error) {
			return nil, nil
		},
	}
	notifications := &mockNotifyRepo{
		createFunc: func(ctx context.Context, n *models.Notification) error {
			created = n
			return nil
		},
	}
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, req ai.Request) (*ai.Content, error) {
			if req.Tracker == nil {
				t.Error("expected tracker context to be passed to the generator")
			}
			return &ai.Content{Title: "Your week", Message: "Six days strong."}, nil
		},
	}

	r := newTestReporter(settings, trackers, notifications, generator, &mockJobQueue{})
	if err := r.ProcessReportJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessReportJob() error = %v", err)
	}
	if created == nil {
		t.Fatal("expected notification to be stored")
	}
	if created.Category != models.CategoryWeeklySummary || created.UserID != job.UserID {
		t.Errorf("notification = %+v, want weekly summary for job user", created)
	}
	if stampedPrev != nil {
		t.Errorf("stamp prev = %v, want the nil value read under this job", stampedPrev)
	}
	if !stampedAt.Equal(sundayEvening) {
		t.Errorf("stamp time = %v, want %v", stampedAt, sundayEvening)
	}
}

func TestProcessReportJobStampConflictTolerated(t *testing.T) {
	t.Parallel()

	s, job := weeklyJobFixture()

	created := false
	settings := &mockSettingsRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error) {
			return s, nil
		},
		stampLastSentFunc: func(ctx context.Context, id uuid.UUID, cat models.Category, prev *time.Time, sent time.Time) error {
			return database.ErrStampConflict
		},
	}
	trackers := &mockTrackerRepo{
		getByUserIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Tracker, error) {
			return nil, nil
		},
		lastActiveAtFunc: func(ctx context.Context, id uuid.UUID) (*time.Time, error) {
			return nil, nil
		},
	}
	notifications := &mockNotifyRepo{
		createFunc: func(ctx context.Context, n *models.Notification) error {
			created = true
			return nil
		},
	}
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, req ai.Request) (*ai.Content, error) {
			return &ai.Content{Title: "Your week", Message: "Steady growth."}, nil
		},
	}

	r := newTestReporter(settings, trackers, notifications, generator, &mockJobQueue{})
	if err := r.ProcessReportJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessReportJob() error = %v, want stamp conflict tolerated", err)
	}
	if !created {
		t.Error("expected notification to be stored before the stamp attempt")
	}
}

func TestProcessReportJobGenerationFailurePropagates(t *testing.T) {
	t.Parallel()

	s, job := weeklyJobFixture()

	settings := &mockSettingsRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error) {
			return s, nil
		},
	}
	trackers := &mockTrackerRepo{
		getByUserIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Tracker, error) {
			return nil, nil
		},
		lastActiveAtFunc: func(ctx context.Context, id uuid.UUID) (*time.Time, error) {
			return nil, nil
		},
	}
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, req ai.Request) (*ai.Content, error) {
			return nil, errors.New("429 too many requests")
		},
	}

	r := newTestReporter(settings, trackers, &mockNotifyRepo{}, generator, &mockJobQueue{})
	if err := r.ProcessReportJob(context.Background(), job); err == nil {
		t.Fatal("expected generation failure to propagate for retry handling")
	}
}

func TestEqualStamp(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	same := now
	other := now.Add(time.Minute)

	tests := []struct {
		name string
		a    *time.Time
		b    *time.Time
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs set", nil, &now, false},
		{"set vs nil", &now, nil, false},
		{"equal values", &now, &same, true},
		{"different values", &now, &other, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := equalStamp(tt.a, tt.b); got != tt.want {
				t.Errorf("equalStamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDelayedRetryPreservesJobIdentity(t *testing.T) {
	t.Parallel()

	prev := time.Now().UTC().Add(-7 * 24 * time.Hour)
	job := queue.NewJob(queue.JobTypeMonthlyReport, uuid.New(), uuid.New(), models.FamilyHannah, models.CategoryMonthlyReport)
	job.PrevSent = &prev
	notBefore := time.Now().Add(time.Hour)

	r := newTestReporter(&mockSettingsRepo{}, &mockTrackerRepo{}, &mockNotifyRepo{}, &mockGenerator{}, &mockJobQueue{})
	delayed := r.delayedRetry(job, notBefore)

	if delayed.ID != job.ID {
		t.Error("retry must keep the job ID")
	}
	if delayed.RetryCount != job.RetryCount+1 {
		t.Errorf("RetryCount = %d, want %d", delayed.RetryCount, job.RetryCount+1)
	}
	if delayed.NotBefore == nil || !delayed.NotBefore.Equal(notBefore) {
		t.Errorf("NotBefore = %v, want %v", delayed.NotBefore, notBefore)
	}
	if delayed.PrevSent == nil || !delayed.PrevSent.Equal(prev) {
		t.Errorf("PrevSent = %v, want carried through retries", delayed.PrevSent)
	}
}
